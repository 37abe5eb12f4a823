package normalize

import (
	"time"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
)

const defaultDietType = "Custom Plan"

func parseMeal(v any) (fitness.MealPlanMeal, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.MealPlanMeal{}, false
	}
	name, ok := requiredText(r, "name")
	if !ok {
		return fitness.MealPlanMeal{}, false
	}
	return fitness.MealPlanMeal{
		Name:         name,
		Type:         optionalText(r, "type"),
		Calories:     optionalNumber(r, "calories"),
		Macros:       parsePartialMacros(r["macros"]),
		Ingredients:  stringList(r["ingredients"]),
		Instructions: stringList(r["instructions"]),
	}, true
}

func parseDailyPlan(v any) (fitness.DailyMealPlan, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.DailyMealPlan{}, false
	}
	day, ok := requiredText(r, "day")
	if !ok {
		return fitness.DailyMealPlan{}, false
	}
	meals := filterList(r["meals"], parseMeal)
	if len(meals) == 0 {
		return fitness.DailyMealPlan{}, false
	}
	return fitness.DailyMealPlan{
		Day:    day,
		Focus:  optionalText(r, "focus"),
		Meals:  meals,
		Snacks: stringList(r["snacks"]),
	}, true
}

func parseRecipe(v any) (fitness.RecipeRecommendation, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.RecipeRecommendation{}, false
	}
	title, ok := requiredText(r, "title")
	if !ok {
		return fitness.RecipeRecommendation{}, false
	}
	return fitness.RecipeRecommendation{
		Title:        title,
		Summary:      optionalText(r, "summary"),
		Macros:       parseMacros(r["macros"]),
		Ingredients:  nonNil(stringList(r["ingredients"])),
		Instructions: nonNil(stringList(r["instructions"])),
	}, true
}

func parseShoppingCategory(v any) (fitness.ShoppingListCategory, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.ShoppingListCategory{}, false
	}
	category, ok := requiredText(r, "category")
	if !ok {
		return fitness.ShoppingListCategory{}, false
	}
	items := filterList(r["items"], parseShoppingItem)
	if len(items) == 0 {
		return fitness.ShoppingListCategory{}, false
	}
	return fitness.ShoppingListCategory{Category: category, Items: items}, true
}

// NutritionPlan normalizes a decoded weekly nutrition plan. The plan is
// rejected only when no valid day survives; every other field falls back to
// a default.
func NutritionPlan(payload any) (*fitness.NutritionPlan, error) {
	const op = "normalize.NutritionPlan"

	r, ok := asRecord(payload)
	if !ok {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "payload is not an object")
	}

	weeklyPlan := filterList(r["weeklyPlan"], parseDailyPlan)
	if len(weeklyPlan) == 0 {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "weeklyPlan has no valid days")
	}

	generatedAt, ok := asString(r["generatedAt"])
	if !ok || generatedAt == "" {
		generatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	dailyCalories, _ := asNumber(r["dailyCalories"])
	dietType, ok := asString(r["dietType"])
	if !ok {
		dietType = defaultDietType
	}

	return &fitness.NutritionPlan{
		GeneratedAt:   generatedAt,
		DailyCalories: dailyCalories,
		DietType:      dietType,
		Macros:        parseMacros(r["macros"]),
		WeeklyPlan:    weeklyPlan,
		Snacks:        nonNil(stringList(r["snacks"])),
		Recipes:       nonNil(filterList(r["recipes"], parseRecipe)),
		ShoppingList:  nonNil(filterList(r["shoppingList"], parseShoppingCategory)),
		Notes:         nonNil(stringList(r["notes"])),
	}, nil
}

// Recipe normalizes a single recipe, as returned by the recipe clipper.
func Recipe(payload any) (*fitness.RecipeRecommendation, error) {
	recipe, ok := parseRecipe(payload)
	if !ok {
		return nil, apperr.Errorf(apperr.KindNormalization, "normalize.Recipe", "recipe has no title")
	}
	return &recipe, nil
}
