package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
	"ai-fitness-coach/internal/llm"
	"ai-fitness-coach/internal/profile"
	"ai-fitness-coach/internal/shared"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- Mocks ---

type mockTextGenerator struct {
	response   string
	err        error
	block      bool
	lastPrompt string
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.lastPrompt = prompt
	if m.block {
		<-ctx.Done()
		return llm.ContentResponse{}, ctx.Err()
	}
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{
		Content: m.response,
		Usage:   shared.TokenUsage{PromptTokens: 120, CompletionTokens: 80, Model: "mock-model"},
	}, nil
}

type mockRecorder struct {
	metas []shared.AgentMeta
	err   error
}

func (m *mockRecorder) RecordMeta(_ context.Context, meta shared.AgentMeta) error {
	m.metas = append(m.metas, meta)
	return m.err
}

func newCoach(gen llm.TextGenerator, rec MetricsRecorder) *Coach {
	return New(gen, rec, zap.NewNop(), Options{GenerationTimeout: time.Second, ChatTimeout: time.Second})
}

// --- Tests ---

func TestGenerateWorkout(t *testing.T) {
	gen := &mockTextGenerator{response: "Sure! ```json\n" +
		`{"name":"Upper Body","description":"Push and pull","exercises":[{"name":"Row","sets":3,"reps":10,"rest_seconds":60},{"name":"Bad"}]}` +
		"\n```"}
	rec := &mockRecorder{}
	c := newCoach(gen, rec)

	plan, err := c.GenerateWorkout(context.Background(), &profile.Profile{FitnessGoal: "Gain Muscle"}, WorkoutRequest{Equipment: "dumbbells"})
	require.NoError(t, err)
	assert.Equal(t, "Upper Body", plan.Name)
	require.Len(t, plan.Exercises, 1)

	assert.Contains(t, gen.lastPrompt, "- Fitness Goal: Gain Muscle")
	assert.Contains(t, gen.lastPrompt, "- Available Equipment: dumbbells")
	assert.Contains(t, gen.lastPrompt, "- Duration: 45 minutes")
	assert.Contains(t, gen.lastPrompt, "- Difficulty: intermediate")

	require.Len(t, rec.metas, 1)
	assert.Equal(t, shared.AgentWorkout, rec.metas[0].AgentName)
	assert.Equal(t, "mock-model", rec.metas[0].Usage.Model)
}

func TestGenerateWorkout_Failures(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockTextGenerator
		kind apperr.Kind
	}{
		{"no json", &mockTextGenerator{response: "I can't do that."}, apperr.KindExtraction},
		{"bad json", &mockTextGenerator{response: `{"name": "x",}`}, apperr.KindParse},
		{"no exercises", &mockTextGenerator{response: `{"name":"Rest","exercises":[]}`}, apperr.KindNormalization},
		{"provider error", &mockTextGenerator{err: errors.New("quota exceeded")}, apperr.KindDownstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := newCoach(tt.gen, nil).GenerateWorkout(context.Background(), nil, WorkoutRequest{})
			assert.Nil(t, plan)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	c := New(&mockTextGenerator{block: true}, nil, zap.NewNop(), Options{GenerationTimeout: 20 * time.Millisecond})

	_, err := c.GenerateNutritionPlan(context.Background(), &profile.Profile{DisplayName: "Sam"}, nil)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
}

func TestGenerateMealPlan_AttachesMacros(t *testing.T) {
	gen := &mockTextGenerator{response: `{"name":"Cut Day","meals":[{"name":"Salad","calories":350,"ingredients":["Lettuce"]}]}`}
	c := newCoach(gen, nil)

	plan, err := c.GenerateMealPlan(context.Background(), &profile.Profile{FitnessGoal: "Weight Loss"}, MealPlanRequest{MealsPerDay: 4})
	require.NoError(t, err)
	require.NotNil(t, plan.TargetMacros)
	assert.Equal(t, fitness.MacroTargets{Protein: 175, Carbs: 150, Fat: 78}, *plan.TargetMacros)

	assert.Contains(t, gen.lastPrompt, "- Target Calories: 2000")
	assert.Contains(t, gen.lastPrompt, "175g protein, 150g carbs, 78g fat")
	assert.Contains(t, gen.lastPrompt, "- Meals: 4")
}

func TestGenerateNutritionPlan(t *testing.T) {
	gen := &mockTextGenerator{response: `{"dietType":"Keto","weeklyPlan":[{"day":"Monday","meals":[{"name":"Eggs"}]}]}`}
	c := newCoach(gen, nil)

	p := &profile.Profile{DisplayName: "Sam", FitnessGoal: "Lose Weight", WaterIntake: "1–2L"}
	plan, err := c.GenerateNutritionPlan(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, "Keto", plan.DietType)
	assert.NotEmpty(t, plan.GeneratedAt)

	assert.Contains(t, gen.lastPrompt, "Name: Sam")
	assert.Contains(t, gen.lastPrompt, "water_intake: 1–2L", "stored quiz answers are used when none are given")
}

func TestChat(t *testing.T) {
	gen := &mockTextGenerator{response: "Aim for 8 hours of sleep."}
	rec := &mockRecorder{err: errors.New("disk full")}
	c := newCoach(gen, rec)

	weight := 80.0
	reply, err := c.Chat(context.Background(), &profile.Profile{DisplayName: "Sam", WeightKg: &weight}, []Message{
		{Role: "user", Content: "How do I recover faster?"},
	})
	require.NoError(t, err, "metrics failures do not fail the chat")
	assert.Equal(t, "Aim for 8 hours of sleep.", reply)

	assert.Contains(t, gen.lastPrompt, "- Name: Sam")
	assert.Contains(t, gen.lastPrompt, "- Weight: 80 kg")
	assert.Contains(t, gen.lastPrompt, "- Height: Not specified")
	assert.True(t, strings.HasSuffix(gen.lastPrompt, "USER: How do I recover faster?\nAI:\n"))

	_, err = c.Chat(context.Background(), nil, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestChat_WithoutProfile(t *testing.T) {
	gen := &mockTextGenerator{response: "Hi"}
	_, err := newCoach(gen, nil).Chat(context.Background(), nil, []Message{{Role: "user", Content: "hello"}})
	require.NoError(t, err)
	assert.NotContains(t, gen.lastPrompt, "User Profile:")
}
