package nutrition

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-coach/internal/database/dbtest"
	"ai-fitness-coach/internal/fitness"
)

func plan(dietType string) *fitness.NutritionPlan {
	return &fitness.NutritionPlan{
		GeneratedAt:   "2024-05-01T10:00:00Z",
		DailyCalories: 2100,
		DietType:      dietType,
		Macros:        fitness.MacroBreakdown{Calories: 2100, Protein: 140},
		WeeklyPlan: []fitness.DailyMealPlan{{
			Day:   "Monday",
			Meals: []fitness.MealPlanMeal{{Name: "Oats", Ingredients: []string{"Oats"}}},
		}},
		Snacks:       []string{},
		Recipes:      []fitness.RecipeRecommendation{},
		ShoppingList: []fitness.ShoppingListCategory{},
		Notes:        []string{"Hydrate"},
	}
}

func TestRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewRepository(db)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, "u1", plan("Keto")))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	if diff := cmp.Diff(plan("Keto"), got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, repo.Upsert(ctx, "u1", plan("Vegan")))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Vegan", got.DietType)

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM nutrition_plans WHERE user_id = 'u1'`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
