// Package fitness holds the value objects produced from AI responses and
// database rows. They are built once per request and never mutated.
package fitness

// MacroBreakdown is a full macro record; absent values are zero.
type MacroBreakdown struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// PartialMacros carries only the macros the AI actually reported.
type PartialMacros struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fats     *float64 `json:"fats,omitempty"`
}

type MealPlanMeal struct {
	Name         string        `json:"name"`
	Type         string        `json:"type,omitempty"`
	Calories     *float64      `json:"calories,omitempty"`
	Macros       PartialMacros `json:"macros"`
	Ingredients  []string      `json:"ingredients,omitempty"`
	Instructions []string      `json:"instructions,omitempty"`
}

type DailyMealPlan struct {
	Day    string         `json:"day"`
	Focus  string         `json:"focus,omitempty"`
	Meals  []MealPlanMeal `json:"meals"`
	Snacks []string       `json:"snacks,omitempty"`
}

type RecipeRecommendation struct {
	Title        string         `json:"title"`
	Summary      string         `json:"summary,omitempty"`
	Macros       MacroBreakdown `json:"macros"`
	Ingredients  []string       `json:"ingredients"`
	Instructions []string       `json:"instructions"`
}

type ShoppingListItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ShoppingListCategory struct {
	Category string             `json:"category"`
	Items    []ShoppingListItem `json:"items"`
}

// NutritionPlan is the weekly plan stored as an opaque JSON document per user.
// WeeklyPlan is never empty.
type NutritionPlan struct {
	GeneratedAt   string                 `json:"generatedAt"`
	DailyCalories float64                `json:"dailyCalories"`
	DietType      string                 `json:"dietType"`
	Macros        MacroBreakdown         `json:"macros"`
	WeeklyPlan    []DailyMealPlan        `json:"weeklyPlan"`
	Snacks        []string               `json:"snacks"`
	Recipes       []RecipeRecommendation `json:"recipes"`
	ShoppingList  []ShoppingListCategory `json:"shoppingList"`
	Notes         []string               `json:"notes"`
}
