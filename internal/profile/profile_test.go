package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/database/dbtest"
)

func TestApplyAnswers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		p := &Profile{ID: "u1", DisplayName: "Sam"}
		err := ApplyAnswers(p, Answers{
			"fitness_goal": "Lose Weight",
			"bad_habits":   []any{"Eat Late", "Too Much Soda"},
			"height":       "175",
			"weight":       "70 kg",
			"age":          nil,
		})
		require.NoError(t, err)

		assert.Equal(t, "Lose Weight", p.FitnessGoal)
		assert.Equal(t, []string{"Eat Late", "Too Much Soda"}, p.BadHabits)
		require.NotNil(t, p.HeightCm)
		assert.Equal(t, 175.0, *p.HeightCm)
		require.NotNil(t, p.WeightKg)
		assert.Equal(t, 70.0, *p.WeightKg)
		assert.Empty(t, p.Age)
	})

	t.Run("UnknownField", func(t *testing.T) {
		p := &Profile{ID: "u1", DisplayName: "Sam"}
		err := ApplyAnswers(p, Answers{"display_name": "Mallory"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "Sam", p.DisplayName)
	})

	t.Run("WrongShapeLeavesProfileUntouched", func(t *testing.T) {
		p := &Profile{ID: "u1", FitnessGoal: "Gain Muscle"}
		err := ApplyAnswers(p, Answers{"fitness_goal": "Lose Weight", "bad_habits": "Eat Late"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "Gain Muscle", p.FitnessGoal)

		err = ApplyAnswers(p, Answers{"body_type": []any{"Slim"}})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("NonNumericHeight", func(t *testing.T) {
		p := &Profile{}
		require.NoError(t, ApplyAnswers(p, Answers{"height": "tall"}))
		assert.Nil(t, p.HeightCm)
		assert.Equal(t, "tall", p.Height)
	})

	t.Run("ClearedOrChangedMeasureDropsNumericCopy", func(t *testing.T) {
		p := &Profile{}
		require.NoError(t, ApplyAnswers(p, Answers{"height": "180", "weight": "80"}))
		require.NotNil(t, p.HeightCm)

		require.NoError(t, ApplyAnswers(p, Answers{"height": nil, "weight": `5'11"`}))
		assert.Empty(t, p.Height)
		assert.Nil(t, p.HeightCm)
		assert.Nil(t, p.WeightKg)
		assert.NotContains(t, BuildSummary(p, nil), "180")
	})

	t.Run("UnrelatedAnswerKeepsMeasures", func(t *testing.T) {
		p := &Profile{}
		require.NoError(t, ApplyAnswers(p, Answers{"height": "180"}))
		require.NoError(t, ApplyAnswers(p, Answers{"fitness_goal": "Gain Muscle"}))
		require.NotNil(t, p.HeightCm)
		assert.Equal(t, 180.0, *p.HeightCm)
	})
}

func TestExtractQuizData(t *testing.T) {
	assert.Empty(t, ExtractQuizData(nil))

	p := &Profile{
		DisplayName:      "Sam",
		FitnessGoal:      "Gain Muscle",
		PopularCuisines:  []string{"Italian"},
		HealthConditions: "none",
	}
	assert.Equal(t, Answers{
		"fitness_goal":     "Gain Muscle",
		"popular_cuisines": []string{"Italian"},
	}, ExtractQuizData(p))
}

func TestBuildSummary(t *testing.T) {
	assert.Equal(t, "No profile data was provided.", BuildSummary(nil, nil))

	height := 180.0
	p := &Profile{
		DisplayName:     "Sam",
		FitnessGoal:     "Gain Muscle",
		DailyRoutine:    "Mostly Sitting",
		HeightCm:        &height,
		Weight:          "82",
		PopularCuisines: []string{"Thai", "Mexican"},
	}
	quiz := Answers{
		"water_intake": "2–3L",
		"bad_habits":   []any{"Eat Late"},
		"cooking_time": "",
	}

	want := "Name: Sam\n" +
		"Goal/Focus: Gain Muscle\n" +
		"Diet Preference: not specified\n" +
		"Activity Level: Mostly Sitting\n" +
		"Height: 180 cm\n" +
		"Weight: 82\n" +
		"Target Weight: not specified\n" +
		"Cuisines enjoyed: Thai, Mexican\n" +
		"Nutrition habits: not specified\n" +
		"bad_habits: Eat Late\n" +
		"water_intake: 2–3L"
	assert.Equal(t, want, BuildSummary(p, quiz))
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	got, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	p, err := repo.SaveAnswers(ctx, "u1", Answers{"fitness_goal": "Lose Weight", "target_zones": []any{"Belly"}})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)

	p.DisplayName = "Sam"
	require.NoError(t, repo.Save(ctx, p))

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Sam", stored.DisplayName)
	assert.Equal(t, "Lose Weight", stored.FitnessGoal)
	assert.Equal(t, []string{"Belly"}, stored.TargetZones)
	assert.False(t, stored.CreatedAt.IsZero())

	_, err = repo.SaveAnswers(ctx, "u1", Answers{"nope": "x"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
