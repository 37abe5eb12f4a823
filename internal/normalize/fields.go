package normalize

import (
	"strings"

	"ai-fitness-coach/internal/fitness"
)

// stringList keeps the non-blank strings of an array, in order. It returns
// nil when nothing survives so optional lists drop out of the JSON output.
func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range raw {
		s, ok := asString(entry)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// nonNil turns a nil list into an empty one for fields that are always
// rendered as arrays.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

// filterList applies parse to every element of an array and keeps the
// accepted ones in order.
func filterList[T any](v any, parse func(any) (T, bool)) []T {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []T
	for _, entry := range raw {
		if item, ok := parse(entry); ok {
			out = append(out, item)
		}
	}
	return out
}

func parseMacros(v any) fitness.MacroBreakdown {
	r, ok := asRecord(v)
	if !ok {
		return fitness.MacroBreakdown{}
	}
	number := func(key string) float64 {
		f, _ := asNumber(r[key])
		return f
	}
	return fitness.MacroBreakdown{
		Calories: number("calories"),
		Protein:  number("protein"),
		Carbs:    number("carbs"),
		Fats:     number("fats"),
	}
}

func parsePartialMacros(v any) fitness.PartialMacros {
	r, ok := asRecord(v)
	if !ok {
		return fitness.PartialMacros{}
	}
	return fitness.PartialMacros{
		Calories: optionalNumber(r, "calories"),
		Protein:  optionalNumber(r, "protein"),
		Carbs:    optionalNumber(r, "carbs"),
		Fats:     optionalNumber(r, "fats"),
	}
}

func parseShoppingItem(v any) (fitness.ShoppingListItem, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.ShoppingListItem{}, false
	}
	name, ok := requiredText(r, "name")
	if !ok {
		return fitness.ShoppingListItem{}, false
	}
	return fitness.ShoppingListItem{
		Name:     name,
		Quantity: optionalText(r, "quantity"),
		Notes:    optionalText(r, "notes"),
	}, true
}
