// Package jsonx extracts JSON from free-form model responses.
//
// Models often wrap JSON in markdown fences or surround it with prose.
// Callers get a tolerant parse: strict first, then fence stripping, then
// a brace-span scan. Extraction failures are ordinary errors; callers
// decide their own fallback.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extract parses a JSON object of type T out of a model response.
func Extract[T any](response string) (T, error) {
	var result T
	raw, err := extractObject(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// extractObject finds the JSON object portion of a response string.
// Handles pure JSON, fenced JSON (```json ... ```), and an object
// embedded in surrounding prose (first '{' to last '}').
func extractObject(response string) (string, error) {
	response = stripFences(response)

	var probe any
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		candidate := response[start : end+1]
		if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
			return candidate, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON object in response: %q", preview)
}

// stripFences removes a markdown code fence wrapping, with or without
// a language tag.
func stripFences(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}
