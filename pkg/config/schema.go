package config

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the config file.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&File{})
	schema.Title = "Grove Sync Configuration"
	schema.Description = "Schema for " + DirName + "/" + FileName + "."

	// Every key is optional; missing keys keep their defaults.
	schema.Required = nil
	return schema
}
