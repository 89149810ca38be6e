package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON constrains the rules file: payment_markers maps channel labels
// to non-empty keyword lists, shekel_channel is a short label. Channel labels
// are open-ended; the UI surfaces whatever the operator configures.
const schemaJSON = `{
  "type": "object",
  "properties": {
    "payment_markers": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "string", "minLength": 1},
        "minItems": 1
      }
    },
    "shekel_channel": {"type": "string", "minLength": 1, "maxLength": 16}
  },
  "additionalProperties": false
}`

var rulesSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules-schema.json", strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("add rules schema: %v", err))
	}
	schema, err := compiler.Compile("rules-schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile rules schema: %v", err))
	}
	return schema
}

// validateRules checks a decoded rules document against the schema. The value
// is round-tripped through JSON so YAML-typed scalars are seen the way the
// validator expects.
func validateRules(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	var normalized any
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&normalized); err != nil {
		return fmt.Errorf("decode rules: %w", err)
	}
	if err := rulesSchema.Validate(normalized); err != nil {
		return fmt.Errorf("rules do not match schema: %w", err)
	}
	return nil
}
