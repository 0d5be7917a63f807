// internal/analysis/schema.go
package analysis

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// analyzeSchema gates the 2xx analyze payload before classification.
// A response that parses as JSON but misses the structural contract
// (candidate ids, scores, the requirements block) is a server failure,
// not a Ready state with garbage in it. An absent candidates key is
// not required here: missing-or-empty candidates is the Empty state,
// not a malformed payload.
const analyzeSchema = `{
	"type": "object",
	"required": ["tender_requirements"],
	"properties": {
		"tender_requirements": {
			"type": "object",
			"required": ["skills"],
			"properties": {
				"experience_years": {"type": "integer"},
				"skills": {
					"type": "array",
					"items": {"type": "string"}
				}
			}
		},
		"candidates": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "score", "profile"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"score": {"type": "integer", "minimum": 0, "maximum": 100},
					"llm_used": {"type": "boolean"},
					"profile": {
						"type": "object",
						"required": ["name"]
					},
					"matchingInfo": {
						"type": "object",
						"required": ["matching_explanation"]
					},
					"bidDraft": {"type": "string"}
				}
			}
		}
	}
}`

var analyzeSchemaLoader = gojsonschema.NewStringLoader(analyzeSchema)

// validatePayload checks raw JSON against the analyze contract and
// returns a readable description of the violations, if any.
func validatePayload(raw []byte) error {
	result, err := gojsonschema.Validate(analyzeSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(details, "; "))
}
