package workout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-coach/internal/database/dbtest"
	"ai-fitness-coach/internal/fitness"
)

func testPlan() fitness.WorkoutPlan {
	weight := 60.0
	return fitness.WorkoutPlan{
		Name:        "Push Day",
		Description: "Chest focus",
		Exercises: []fitness.WorkoutExercise{
			{Name: "Bench Press", Sets: 4, Reps: 8, WeightKg: &weight, RestSeconds: 90, Notes: "Slow"},
			{Name: "Push-up", Sets: 3, Reps: 15, RestSeconds: 45},
		},
	}
}

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	created, err := repo.Create(ctx, "u1", testPlan(), "intermediate", 45, true)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Push Day", got.Name)
	assert.Equal(t, "intermediate", got.Difficulty)
	assert.Equal(t, 45, got.DurationMinutes)
	assert.True(t, got.AIGenerated)
	assert.Equal(t, testPlan().Exercises, got.Exercises)

	other, err := repo.Get(ctx, "u2", created.ID)
	require.NoError(t, err)
	assert.Nil(t, other, "workouts are owner scoped")

	_, err = repo.Create(ctx, "u1", fitness.WorkoutPlan{Name: "Legs", Exercises: testPlan().Exercises[:1]}, "", 0, false)
	require.NoError(t, err)

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Legs", list[0].Name)
	assert.Nil(t, list[0].Exercises)

	empty, err := repo.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, empty)

	deleted, err := repo.Delete(ctx, "u2", created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := repo.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRepository_LogCompletion(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	w, err := repo.Create(ctx, "u1", testPlan(), "", 30, false)
	require.NoError(t, err)

	l, err := repo.LogCompletion(ctx, "u2", w.ID, 30, "")
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = repo.LogCompletion(ctx, "u1", w.ID, 35, "felt strong")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, w.ID, l.WorkoutID)

	logs, err := repo.Logs(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "felt strong", logs[0].Notes)
	assert.Equal(t, 35, logs[0].DurationMinutes)
}
