// Package params negotiates recipe parameters: prompting, validation, argument
// building and human-readable summaries.
package params

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
	"github.com/grovetools/justrun/pkg/prompt"
	"github.com/grovetools/justrun/pkg/recipe"
	"github.com/sirupsen/logrus"
)

// Input is the value collected for one parameter.
type Input struct {
	Name   string      `json:"name" yaml:"name"`
	Kind   recipe.Kind `json:"kind" yaml:"kind"`
	Value  string      `json:"value,omitempty" yaml:"value,omitempty"`
	Values []string    `json:"values,omitempty" yaml:"values,omitempty"`
}

// Singular builds a single-value input.
func Singular(name, value string) Input {
	return Input{Name: name, Kind: recipe.KindSingular, Value: value}
}

// Variadic builds a multi-value input.
func Variadic(name string, values ...string) Input {
	return Input{Name: name, Kind: recipe.KindVariadic, Values: values}
}

// IsBlank reports whether the input carries no non-blank value.
func (in Input) IsBlank() bool {
	if in.Kind == recipe.KindVariadic {
		for _, v := range in.Values {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	}
	return strings.TrimSpace(in.Value) == ""
}

// Negotiator prompts for parameters through a Prompter.
type Negotiator struct {
	prompter prompt.Prompter
	logger   *logrus.Entry
}

// NewNegotiator creates a negotiator.
func NewNegotiator(p prompt.Prompter) *Negotiator {
	return &Negotiator{prompter: p, logger: logging.NewLogger("params")}
}

// Prompt asks for every declared parameter in declaration order. Values in
// preset skip their prompt; preset names the recipe does not declare are
// passed through so Validate reports them. Cancelling any prompt abandons the
// whole sequence.
func (n *Negotiator) Prompt(ctx context.Context, r recipe.Recipe, preset map[string]string) ([]Input, error) {
	inputs := make([]Input, 0, len(r.Parameters))
	for _, p := range r.Parameters {
		if value, ok := preset[p.Name]; ok {
			n.logger.WithField("parameter", p.Name).Debug("Using preset value")
			inputs = append(inputs, inputFor(p, value))
			continue
		}

		value, err := n.prompter.Input(ctx, inputRequest(r, p))
		if err != nil {
			if prompt.IsCancelled(err) {
				return nil, prompt.ErrCancelled
			}
			return nil, err
		}
		inputs = append(inputs, inputFor(p, value))
	}
	return append(inputs, unknownInputs(r, preset)...), nil
}

func inputFor(p recipe.Parameter, raw string) Input {
	if p.Kind == recipe.KindVariadic {
		return Variadic(p.Name, strings.Fields(raw)...)
	}
	return Singular(p.Name, raw)
}

func inputRequest(r recipe.Recipe, p recipe.Parameter) prompt.InputRequest {
	req := prompt.InputRequest{Title: fmt.Sprintf("%s: %s", r.Name, p.Name)}
	if p.Kind == recipe.KindVariadic {
		req.Title += " (space-separated)"
	}
	if p.Default != nil {
		req.Initial = *p.Default
		req.Placeholder = "default: " + *p.Default
	} else if p.Required() {
		req.Placeholder = "required"
	}
	if p.Required() {
		name := p.Name
		req.Validate = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", name)
			}
			return nil
		}
	}
	return req
}

// Ordered returns inputs re-sequenced by the recipe's declared parameter
// order. Inputs naming no declared parameter follow in their given order.
func Ordered(r recipe.Recipe, inputs []Input) []Input {
	used := make([]bool, len(inputs))
	ordered := make([]Input, 0, len(inputs))
	for _, p := range r.Parameters {
		for i, in := range inputs {
			if !used[i] && in.Name == p.Name {
				ordered = append(ordered, in)
				used[i] = true
			}
		}
	}
	for i, in := range inputs {
		if !used[i] {
			ordered = append(ordered, in)
		}
	}
	return ordered
}

// BuildArguments returns the argument vector for just: the recipe name
// followed by the values in declared parameter order. Blank singular values
// and blank variadic tokens are omitted.
func BuildArguments(r recipe.Recipe, inputs []Input) []string {
	args := []string{r.Name}
	for _, in := range Ordered(r, inputs) {
		if in.Kind == recipe.KindVariadic {
			for _, v := range in.Values {
				if v = strings.TrimSpace(v); v != "" {
					args = append(args, v)
				}
			}
			continue
		}
		if v := strings.TrimSpace(in.Value); v != "" {
			args = append(args, v)
		}
	}
	return args
}

// Validate returns every problem with inputs; an empty result means valid.
func Validate(r recipe.Recipe, inputs []Input) []string {
	var problems []string

	for _, p := range r.Parameters {
		if !p.Required() {
			continue
		}
		found := false
		for _, in := range inputs {
			if in.Name == p.Name && !in.IsBlank() {
				found = true
				break
			}
		}
		if !found {
			problems = append(problems, fmt.Sprintf("missing required parameter %q", p.Name))
		}
	}

	for _, in := range inputs {
		if _, ok := r.Parameter(in.Name); !ok {
			problems = append(problems, fmt.Sprintf("unknown parameter %q", in.Name))
		}
	}

	return problems
}

// ValidationError wraps Validate's problems in an ErrCodeValidation error,
// or returns nil when there are none.
func ValidationError(r recipe.Recipe, inputs []Input) error {
	if problems := Validate(r, inputs); len(problems) > 0 {
		return errors.ValidationFailed(r.Name, problems)
	}
	return nil
}

// DisplayString renders a recipe's parameters for listings, e.g.
// "env* region=us +targets*". Variadic parameters come last, the rest are
// alphabetical. A trailing "*" marks a parameter without a default, star
// variadics included. It says nothing about argument order.
func DisplayString(r recipe.Recipe) string {
	sorted := make([]recipe.Parameter, len(r.Parameters))
	copy(sorted, r.Parameters)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := sorted[i].Kind == recipe.KindVariadic, sorted[j].Kind == recipe.KindVariadic
		if vi != vj {
			return vj
		}
		return sorted[i].Name < sorted[j].Name
	})

	parts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		var b strings.Builder
		if p.Kind == recipe.KindVariadic {
			b.WriteString("+")
		}
		b.WriteString(p.Name)
		if p.Default != nil {
			b.WriteString("=")
			b.WriteString(*p.Default)
		}
		if p.Default == nil {
			b.WriteString("*")
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " ")
}

// Summary renders the inputs as "key: value" lines under a heading.
func Summary(name string, inputs []Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s with:", name)
	for _, in := range inputs {
		fmt.Fprintf(&b, "\n  %s: %s", in.Name, displayValue(in))
	}
	return b.String()
}

func displayValue(in Input) string {
	var v string
	if in.Kind == recipe.KindVariadic {
		v = strings.Join(in.Values, " ")
	} else {
		v = in.Value
	}
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

// ConfirmSummary shows Summary and asks the user to proceed.
func (n *Negotiator) ConfirmSummary(ctx context.Context, name string, inputs []Input) (bool, error) {
	return n.prompter.Confirm(ctx, Summary(name, inputs))
}

var names = command.NewSafeBuilder()

// ParsePreset parses repeated name=value assignments. Names follow just's
// identifier rules.
func ParsePreset(assignments []string) (map[string]string, error) {
	preset := make(map[string]string, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("invalid assignment %q (expected name=value)", a))
		}
		if err := names.Validate("parameterName", name); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("invalid assignment %q", a))
		}
		preset[name] = value
	}
	return preset, nil
}

// FromPreset turns name=value assignments into inputs following the recipe's
// parameter kinds. Names the recipe does not declare become singular inputs so
// that validation reports them.
func FromPreset(r recipe.Recipe, preset map[string]string) []Input {
	var inputs []Input
	for _, p := range r.Parameters {
		if v, ok := preset[p.Name]; ok {
			inputs = append(inputs, inputFor(p, v))
		}
	}
	return append(inputs, unknownInputs(r, preset)...)
}

func unknownInputs(r recipe.Recipe, preset map[string]string) []Input {
	var names []string
	for name := range preset {
		if _, ok := r.Parameter(name); !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	inputs := make([]Input, 0, len(names))
	for _, name := range names {
		inputs = append(inputs, Singular(name, preset[name]))
	}
	return inputs
}
