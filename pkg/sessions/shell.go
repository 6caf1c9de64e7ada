package sessions

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/grovetools/justrun/config"
)

// Dialect selects how a command line is quoted for a shell.
type Dialect int

const (
	DialectPOSIX Dialect = iota
	DialectWindows
)

func (d Dialect) String() string {
	if d == DialectWindows {
		return "windows"
	}
	return "posix"
}

// Shell is the program that runs inside a persistent session.
type Shell struct {
	Program string
	Args    []string
	Dialect Dialect
}

// Argv returns the program followed by its arguments.
func (s Shell) Argv() []string {
	return append([]string{s.Program}, s.Args...)
}

// DefaultShell picks the shell for the running platform, honoring the
// per-platform overrides in cfg.
func DefaultShell(cfg config.ShellConfig) Shell {
	return shellFor(runtime.GOOS, cfg, os.Getenv("SHELL"))
}

func shellFor(goos string, cfg config.ShellConfig, envShell string) Shell {
	if goos == "windows" {
		program := cfg.Windows
		if program == "" {
			program = "cmd.exe"
		}
		args := cfg.WindowsArgs
		if args == nil {
			args = windowsArgs(program)
		}
		return Shell{Program: program, Args: args, Dialect: DialectWindows}
	}

	program := cfg.Posix
	if program == "" {
		program = envShell
	}
	if program == "" {
		program = "/bin/sh"
	}
	return Shell{Program: program, Args: cfg.PosixArgs, Dialect: DialectPOSIX}
}

// windowsArgs makes the shell read commands from stdin without echoing a banner.
func windowsArgs(program string) []string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(program), filepath.Ext(program)))
	switch base {
	case "pwsh", "powershell":
		return []string{"-NoLogo", "-NoProfile", "-Command", "-"}
	case "cmd":
		return []string{"/Q"}
	}
	return nil
}

// Compose joins argv into one command line quoted for the shell's dialect.
func (s Shell) Compose(argv []string) string {
	quote := quotePOSIX
	if s.Dialect == DialectWindows {
		quote = quoteWindows
	}
	parts := make([]string, len(argv))
	for i, arg := range argv {
		parts[i] = quote(arg)
	}
	return strings.Join(parts, " ")
}

var posixSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

func quotePOSIX(arg string) string {
	if arg == "" {
		return "''"
	}
	if posixSafe.MatchString(arg) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// quoteWindows follows the CommandLineToArgvW rules: backslashes are literal
// unless they precede a double quote.
func quoteWindows(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\"&|<>^%") {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, r := range arg {
		switch r {
		case '\\':
			slashes++
			continue
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes*2+1))
		default:
			b.WriteString(strings.Repeat(`\`, slashes))
		}
		slashes = 0
		b.WriteRune(r)
	}
	b.WriteString(strings.Repeat(`\`, slashes*2))
	b.WriteByte('"')
	return b.String()
}
