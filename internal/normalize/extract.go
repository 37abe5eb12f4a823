package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-fitness-coach/internal/apperr"
)

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// Extract pulls the JSON object out of an AI text response. Markdown fences
// are removed, then the first complete JSON value starting at the first '{'
// is decoded; prose before it and anything after it are ignored.
//
// It fails with a KindExtraction error when the text holds no '{' ... '}'
// span, and with KindParse when that span is not valid JSON.
func Extract(text string) (map[string]any, error) {
	const op = "normalize.Extract"

	cleaned := strings.TrimSpace(fenceReplacer.Replace(text))
	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end < start {
		return nil, apperr.Errorf(apperr.KindExtraction, op, "response contains no JSON object")
	}

	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(cleaned[start : end+1]))
	if err := dec.Decode(&obj); err != nil {
		return nil, apperr.E(apperr.KindParse, op, fmt.Errorf("invalid JSON in response: %w", err))
	}
	return obj, nil
}

// Parse extracts the JSON object from text and hands it to a normalizer such
// as WorkoutPlan, MealPlan or NutritionPlan.
func Parse[T any](text string, normalizer func(any) (*T, error)) (*T, error) {
	payload, err := Extract(text)
	if err != nil {
		return nil, err
	}
	return normalizer(payload)
}
