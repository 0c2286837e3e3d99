package nlsql

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// answerSchema constrains what we accept from the external service before
// handing its output onward.
func answerSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"query":         map[string]any{"type": "string"},
			"generated_sql": map[string]any{"type": "string"},
			"results": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
			"row_count": map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"query", "generated_sql", "results", "row_count"},
	}
}

// ValidateAnswer checks a raw service reply against the answer schema.
func ValidateAnswer(data []byte) error {
	b, err := json.Marshal(answerSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("answer does not match schema: %w", err)
	}
	return nil
}
