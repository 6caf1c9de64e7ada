package recipe

import (
	"fmt"

	"github.com/grovetools/justrun/errors"
	"github.com/tidwall/gjson"
)

// Parse decodes the output of `just --dump --dump-format json`. Recipes are
// returned in document order. Any structural problem fails the whole document
// with an ErrCodeDiscoveryFailed error.
func Parse(data []byte) ([]Recipe, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.DiscoveryFailed("discovery output is not valid JSON", nil)
	}

	recipes := gjson.GetBytes(data, "recipes")
	if !recipes.IsObject() {
		return nil, errors.DiscoveryFailed("discovery output has no \"recipes\" object", nil)
	}

	var (
		out      []Recipe
		parseErr error
	)
	recipes.ForEach(func(key, value gjson.Result) bool {
		r, err := parseRecipe(key.String(), value)
		if err != nil {
			parseErr = err
			return false
		}
		out = append(out, r)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

func parseRecipe(key string, value gjson.Result) (Recipe, error) {
	if !value.IsObject() {
		return Recipe{}, errors.DiscoveryFailed(fmt.Sprintf("recipe %q is not an object", key), nil)
	}

	r := Recipe{
		Name:    key,
		Doc:     stringOrEmpty(value.Get("doc")),
		Private: value.Get("private").Type == gjson.True,
	}
	if name := value.Get("name"); name.Type == gjson.String && name.Str != "" {
		r.Name = name.Str
	}

	params, err := parseParameters(r.Name, value.Get("parameters"))
	if err != nil {
		return Recipe{}, err
	}
	r.Parameters = params
	r.Attributes = parseAttributes(value.Get("attributes"))

	for _, attr := range r.Attributes {
		switch attr.Name {
		case "group":
			if attr.HasValue {
				r.Groups = append(r.Groups, attr.Value)
			}
		case "private":
			r.Private = true
		case "confirm":
			if r.Confirm == nil {
				text := attr.Value
				r.Confirm = &text
			}
		}
	}
	return r, nil
}

func parseParameters(recipe string, value gjson.Result) ([]Parameter, error) {
	if !value.Exists() || value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsArray() {
		return nil, errors.DiscoveryFailed(fmt.Sprintf("recipe %q: parameters is not a list", recipe), nil)
	}

	var params []Parameter
	for _, item := range value.Array() {
		name := item.Get("name")
		if name.Type != gjson.String || name.Str == "" {
			return nil, errors.DiscoveryFailed(fmt.Sprintf("recipe %q: parameter without a name", recipe), nil)
		}
		p := Parameter{Name: name.Str, Kind: KindSingular}
		switch item.Get("kind").String() {
		case "plus":
			p.Kind = KindVariadic
		case "star":
			p.Kind = KindVariadic
			p.AllowEmpty = true
		}
		switch def := item.Get("default"); def.Type {
		case gjson.Null:
		case gjson.String:
			s := def.Str
			p.Default = &s
		default:
			// Expression defaults are kept as their raw JSON.
			s := def.Raw
			p.Default = &s
		}
		params = append(params, p)
	}
	return params, nil
}

// parseAttributes normalizes bare tags and single-key mappings. A mapping with
// several keys contributes one attribute per key, in document order.
func parseAttributes(value gjson.Result) []Attribute {
	if !value.IsArray() {
		return nil
	}

	var attrs []Attribute
	for _, item := range value.Array() {
		switch {
		case item.Type == gjson.String:
			attrs = append(attrs, Tag(item.Str))
		case item.IsObject():
			item.ForEach(func(k, v gjson.Result) bool {
				attrs = append(attrs, KeyValue(k.String(), attributeValue(v)))
				return true
			})
		}
	}
	return attrs
}

func attributeValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

func stringOrEmpty(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return ""
}
