package normalize

import (
	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
)

func parseGeneratedMeal(v any) (fitness.GeneratedMeal, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.GeneratedMeal{}, false
	}
	name, ok := requiredText(r, "name")
	if !ok {
		return fitness.GeneratedMeal{}, false
	}
	calories, ok := asNumber(r["calories"])
	if !ok {
		return fitness.GeneratedMeal{}, false
	}
	ingredients := stringList(r["ingredients"])
	if len(ingredients) == 0 {
		return fitness.GeneratedMeal{}, false
	}
	return fitness.GeneratedMeal{
		Name:         name,
		MealType:     optionalText(r, "meal_type"),
		Calories:     calories,
		ProteinG:     optionalNumber(r, "protein_g"),
		CarbsG:       optionalNumber(r, "carbs_g"),
		FatG:         optionalNumber(r, "fat_g"),
		Ingredients:  ingredients,
		Instructions: stringList(r["instructions"]),
	}, true
}

// MealPlan normalizes a decoded daily meal plan. It needs a name and at least
// one meal with calories and ingredients.
func MealPlan(payload any) (*fitness.MealPlan, error) {
	const op = "normalize.MealPlan"

	r, ok := asRecord(payload)
	if !ok {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "payload is not an object")
	}
	name, ok := requiredText(r, "name")
	if !ok {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "meal plan has no name")
	}
	meals := filterList(r["meals"], parseGeneratedMeal)
	if len(meals) == 0 {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "meal plan has no valid meals")
	}
	return &fitness.MealPlan{
		Name:        name,
		Description: optionalText(r, "description"),
		Meals:       meals,
	}, nil
}
