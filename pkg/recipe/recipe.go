// Package recipe discovers, parses and caches the recipes a justfile declares.
package recipe

import (
	"fmt"
	"time"
)

// DefaultConfirmPrompt is shown when a recipe requests confirmation without
// its own prompt text.
const DefaultConfirmPrompt = "Are you sure you want to run this recipe?"

// Kind distinguishes parameters that take one value from those that take many.
type Kind int

const (
	// KindSingular accepts exactly one value.
	KindSingular Kind = iota
	// KindVariadic accepts zero or more whitespace-separated values (just's `+` and `*`).
	KindVariadic
)

func (k Kind) String() string {
	if k == KindVariadic {
		return "variadic"
	}
	return "singular"
}

// MarshalText renders the kind for JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names MarshalText produces.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "singular", "":
		*k = KindSingular
	case "variadic":
		*k = KindVariadic
	default:
		return fmt.Errorf("unknown parameter kind %q", text)
	}
	return nil
}

// Parameter is one declared recipe parameter.
type Parameter struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Default is nil when the parameter declares no default.
	Default *string `json:"default"`
	// AllowEmpty marks a variadic parameter that accepts zero values (just's `*`).
	AllowEmpty bool `json:"allow_empty,omitempty"`
}

// Required reports whether a value must be supplied.
func (p Parameter) Required() bool {
	return p.Default == nil && !p.AllowEmpty
}

// Attribute is a normalized recipe attribute: either a bare tag such as
// `private`, or a key/value pair such as `group: ci`.
type Attribute struct {
	Name     string `json:"name"`
	Value    string `json:"value,omitempty"`
	HasValue bool   `json:"-"`
}

// Tag builds a bare attribute.
func Tag(name string) Attribute {
	return Attribute{Name: name}
}

// KeyValue builds a key/value attribute.
func KeyValue(name, value string) Attribute {
	return Attribute{Name: name, Value: value, HasValue: true}
}

// IsTag reports whether the attribute carries no value.
func (a Attribute) IsTag() bool {
	return !a.HasValue
}

// Recipe is one parsed recipe definition. Values are never mutated after parsing.
type Recipe struct {
	Name       string      `json:"name"`
	Doc        string      `json:"doc,omitempty"`
	Parameters []Parameter `json:"parameters"`
	// Groups keeps every `group` attribute in order, duplicates included.
	Groups  []string `json:"groups"`
	Private bool     `json:"private"`
	// Confirm is nil when no confirmation is requested. A non-nil empty string
	// requests confirmation with DefaultConfirmPrompt.
	Confirm    *string     `json:"confirm,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// NeedsConfirmation reports whether the recipe carries a confirm attribute.
func (r Recipe) NeedsConfirmation() bool {
	return r.Confirm != nil
}

// ConfirmPrompt returns the text to show before running the recipe.
func (r Recipe) ConfirmPrompt() string {
	if r.Confirm == nil || *r.Confirm == "" {
		return DefaultConfirmPrompt
	}
	return *r.Confirm
}

// Parameter looks up a declared parameter by name.
func (r Recipe) Parameter(name string) (Parameter, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Snapshot is the cached result of one discovery run.
type Snapshot struct {
	Recipes    []Recipe
	CapturedAt time.Time
}
