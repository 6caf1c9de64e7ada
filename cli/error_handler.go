package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/tui/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to out
func NewErrorHandler(out io.Writer, verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     out,
	}
}

func (h *ErrorHandler) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.Out, format, args...)
}

// Handle prints a message for err based on its code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := theme.DefaultTheme
	fail := t.Error.Render(theme.IconError)
	e, structured := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		h.printf("%s Configuration file not found: %v\n", fail, e.Details["path"])

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		h.printf("%s %s\n", fail, capitalize(e.Message))
		if problems, ok := e.Details["errors"].([]string); ok {
			for _, p := range problems {
				h.printf("  %s %s\n", theme.IconBullet, p)
			}
		}

	case errors.ErrCodeRecipeNotFound:
		h.printf("%s %s\n", fail, capitalize(e.Message))
		h.printf("%s\n", t.Muted.Render("Run 'justrun list' to see available recipes."))

	case errors.ErrCodeValidation:
		h.printf("%s Invalid parameters for '%v':\n", fail, e.Details["recipe"])
		if problems, ok := e.Details["errors"].([]string); ok {
			for _, p := range problems {
				h.printf("  %s %s\n", theme.IconBullet, p)
			}
		}

	case errors.ErrCodeSpawnFailed:
		h.printf("%s Could not start the recipe: %s\n", fail, e.Message)
		h.printf("%s\n", t.Muted.Render("Check that just is installed or set just.path in justrun.yml."))

	case errors.ErrCodeRuntimeFailure:
		h.printf("%s Recipe '%v' failed with exit code %v\n", fail, e.Details["recipe"], e.Details["exitCode"])

	case errors.ErrCodeSessionFailed:
		h.printf("%s Session '%v' is unavailable: %v\n", fail, e.Details["session"], e.Cause)

	case errors.ErrCodeDiscoveryFailed:
		h.printf("%s %s\n", fail, capitalize(e.Message))

	case errors.ErrCodeInvalidInput:
		h.printf("%s %s\n", fail, capitalize(e.Message))

	default:
		h.printf("%s Error: %v\n", fail, err)
	}

	if h.Verbose && structured {
		h.printf("\nError details:\n%s\n", e.ToJSON())
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
