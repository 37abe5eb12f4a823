package fitness

// WorkoutExercise is one exercise of a generated or saved workout.
type WorkoutExercise struct {
	Name        string   `json:"name"`
	Sets        int      `json:"sets"`
	Reps        int      `json:"reps"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	RestSeconds int      `json:"rest_seconds"`
	Notes       string   `json:"notes,omitempty"`
}

// WorkoutPlan always has at least one exercise.
type WorkoutPlan struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// GeneratedMeal is one meal of an AI-generated daily meal plan.
type GeneratedMeal struct {
	Name         string   `json:"name"`
	MealType     string   `json:"meal_type,omitempty"`
	Calories     float64  `json:"calories"`
	ProteinG     *float64 `json:"protein_g,omitempty"`
	CarbsG       *float64 `json:"carbs_g,omitempty"`
	FatG         *float64 `json:"fat_g,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions,omitempty"`
}

// MealPlan is the daily meal plan variant, distinct from NutritionPlan.
// Meals is never empty and every meal has at least one ingredient.
type MealPlan struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Meals        []GeneratedMeal `json:"meals"`
	TargetMacros *MacroTargets   `json:"targetMacros,omitempty"`
}
