package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaName identifies one of the response shapes the backend returns.
type schemaName string

const (
	schemaCategories schemaName = "categories"
	schemaQuestions  schemaName = "questions"
	schemaResult     schemaName = "result"
)

var answerSchema = map[string]any{
	"type":     "object",
	"required": []any{"answer"},
	"properties": map[string]any{
		"answer":    map[string]any{"type": "integer"},
		"if_forced": map[string]any{"type": "boolean"},
	},
}

// Shapes only: value ranges (e.g. min_answer outside 0..4) are left to the
// renderer, which falls back to "N/A" labels.
var definitions = map[schemaName]map[string]any{
	schemaCategories: {
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"id", "name"},
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer"},
				"name": map[string]any{"type": "string"},
			},
		},
	},
	schemaQuestions: {
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"id", "text"},
			"properties": map[string]any{
				"id":          map[string]any{"type": "integer"},
				"text":        map[string]any{"type": "string"},
				"category_id": map[string]any{"type": "integer"},
			},
		},
	},
	schemaResult: {
		"type":     "object",
		"required": []any{"id"},
		"properties": map[string]any{
			"id": map[string]any{"type": "string", "minLength": 1},
			"matching_result": map[string]any{
				"type": []any{"array", "null"},
				"items": map[string]any{
					"type":     "object",
					"required": []any{"min_answer", "matches"},
					"properties": map[string]any{
						"min_answer": map[string]any{"type": "integer"},
						"matches": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":     "object",
								"required": []any{"question_id", "answer_a", "answer_b"},
								"properties": map[string]any{
									"question_id": map[string]any{"type": "integer"},
									"answer_a":    answerSchema,
									"answer_b":    answerSchema,
								},
							},
						},
					},
				},
			},
		},
	},
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[schemaName]*jsonschema.Schema

// validateBody checks raw JSON against the named response schema.
// Returns *InvalidResponseError on failure.
func validateBody(name schemaName, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &InvalidResponseError{Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(name)
	if err != nil {
		return &InvalidResponseError{Body: raw, Err: fmt.Errorf("compile schema %q: %w", name, err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &InvalidResponseError{Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compiledSchema(name schemaName) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := definitions[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	// The compiler wants a plain decoded JSON value, so round-trip the Go map.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://kmatcher/%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
