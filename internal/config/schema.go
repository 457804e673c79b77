package config

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	dserrors "github.com/systmms/davsync/internal/errors"
)

const scalarSchema = `{"type": ["string", "number", "boolean", "null"]}`

var documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["general"],
  "properties": {
    "general": {
      "type": ["object", "null"],
      "additionalProperties": ` + scalarSchema + `
    },
    "pairs": {"$ref": "#/definitions/sections"},
    "storages": {"$ref": "#/definitions/sections"}
  },
  "definitions": {
    "sections": {
      "type": "object",
      "additionalProperties": {
        "type": ["object", "null"],
        "additionalProperties": ` + scalarSchema + `
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

func validateDocument(doc interface{}) error {
	if doc == nil {
		return dserrors.ConfigError{
			Message:    "configuration file is empty",
			Suggestion: "Add at least a 'general:' section",
		}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return dserrors.ConfigError{
			Message:    "configuration could not be checked against the schema",
			Suggestion: "Make sure all keys are plain strings",
			Err:        err,
		}
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return dserrors.ConfigError{
			Field:      result.Errors()[0].Field(),
			Message:    "schema validation failed:\n  - " + strings.Join(msgs, "\n  - "),
			Suggestion: "Only general, pairs and storages are allowed, and each setting must be a plain value",
		}
	}

	return nil
}
