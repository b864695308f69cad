package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var summarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"strengths":  map[string]any{"type": "string", "minLength": 1},
		"weaknesses": map[string]any{"type": "string", "minLength": 1},
	},
	"required": []string{"strengths", "weaknesses"},
}

var jobMatchSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"matchScore": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		"matchingKeywords": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"missingKeywords": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"matchScore", "matchingKeywords", "missingKeywords"},
}

// validateJSON checks a model reply against schema
func validateJSON(schema map[string]any, document string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
}

// extractJSON strips markdown code fences and any text around the outermost
// JSON object
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
