package meals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-coach/internal/database/dbtest"
	"ai-fitness-coach/internal/fitness"
)

func ptr(f float64) *float64 { return &f }

func testMealPlan() fitness.MealPlan {
	return fitness.MealPlan{
		Name:        "Lean Day",
		Description: "High protein",
		Meals: []fitness.GeneratedMeal{
			{Name: "Eggs", MealType: "breakfast", Calories: 400, ProteinG: ptr(30), FatG: ptr(25), Ingredients: []string{"Eggs"}, Instructions: []string{"Scramble"}},
			{Name: "Salmon", Calories: 650, ProteinG: ptr(45), CarbsG: ptr(40), FatG: ptr(30), Ingredients: []string{"Salmon", "Rice"}},
		},
	}
}

func TestTotals(t *testing.T) {
	calories, protein, carbs, fat := Totals(testMealPlan().Meals)
	assert.Equal(t, 1050.0, calories)
	assert.Equal(t, 75.0, protein)
	assert.Equal(t, 40.0, carbs)
	assert.Equal(t, 55.0, fat)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewRepository(db)

	created, err := repo.Create(ctx, "u1", testMealPlan())
	require.NoError(t, err)
	assert.Equal(t, 1050.0, created.TargetCalories)

	got, err := repo.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 75.0, got.TargetProtein)
	assert.Equal(t, testMealPlan().Meals, got.Meals)

	none, err := repo.Get(ctx, "u2", created.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lean Day", list[0].Name)

	deleted, err := repo.Delete(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var meals int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM meals`).Scan(&meals))
	assert.Zero(t, meals, "meals are removed with their plan")
}
