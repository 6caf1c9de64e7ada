package config

//go:generate go run ../tools/schema-generator -o ../schema/justrun.schema.json

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for justrun configuration files.
// Typed sections reject unknown fields; the top level stays open so tool
// extensions such as `logging` can live beside them.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
		DoNotReference:            true,
	}

	schema := r.Reflect(&Config{})
	schema.Title = "justrun configuration"
	schema.Description = "Schema for justrun.yml and justrun.toml."
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.AdditionalProperties = jsonschema.TrueSchema

	return json.MarshalIndent(schema, "", "  ")
}
