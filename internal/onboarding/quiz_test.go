package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/database/dbtest"
	"ai-fitness-coach/internal/profile"
)

func testQuestions(t *testing.T) []Question {
	t.Helper()
	questions, err := ParseQuestions([]byte(`
- id: fitness_goal
  category: Fitness
  question: What is your main goal?
  options: [Lose Weight, Gain Muscle]
- id: bad_habits
  category: Lifestyle
  question: Bad habits?
  type: checkbox
  options: [Eat Late, Too Much Soda]
- id: height
  category: Health
  question: What is your height?
  type: input
`))
	require.NoError(t, err)
	return questions
}

func TestLoadQuestions(t *testing.T) {
	questions, err := LoadQuestions()
	require.NoError(t, err)
	require.Len(t, questions, 21)
	assert.Equal(t, "fitness_goal", questions[0].ID)
	assert.Equal(t, TypeRadio, questions[0].Type)
	assert.Equal(t, TypeCheckbox, questions[3].Type)
	assert.True(t, questions[10].AllowSelectAll)
	assert.Equal(t, "age", questions[len(questions)-1].ID)
}

func TestParseQuestions_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":        `[]`,
		"no id":        `[{category: Fitness, question: x, options: [a]}]`,
		"duplicate":    `[{id: age, options: [a]}, {id: age, options: [b]}]`,
		"not a field":  `[{id: favourite_colour, options: [red]}]`,
		"no options":   `[{id: age}]`,
		"invalid yaml": `- id: [`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuestions([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestQuiz_Flow(t *testing.T) {
	q := NewQuiz(testQuestions(t))

	current, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "fitness_goal", current.ID)
	assert.Equal(t, 0, q.Progress())

	err := q.Next()
	assert.True(t, apperr.Is(err, apperr.KindValidation), "next without an answer")

	assert.True(t, apperr.Is(q.Answer("fitness_goal", "Fly"), apperr.KindValidation))
	require.NoError(t, q.Answer("fitness_goal", "Gain Muscle"))
	require.NoError(t, q.Next())
	assert.Equal(t, 33, q.Progress())

	assert.True(t, apperr.Is(q.Answer("bad_habits", "Eat Late"), apperr.KindValidation))
	assert.True(t, apperr.Is(q.Answer("bad_habits", []any{}), apperr.KindValidation))
	require.NoError(t, q.Answer("bad_habits", []any{"Eat Late", "Eat Late", "Too Much Soda"}))
	require.NoError(t, q.Next())

	assert.True(t, apperr.Is(q.Answer("height", "   "), apperr.KindValidation))
	require.NoError(t, q.Answer("height", " 180 "))
	require.NoError(t, q.Next())

	assert.True(t, q.Completed())
	assert.Equal(t, 100, q.Progress())
	_, ok = q.Current()
	assert.False(t, ok)
	assert.True(t, apperr.Is(q.Next(), apperr.KindValidation))

	assert.Equal(t, profile.Answers{
		"fitness_goal": "Gain Muscle",
		"bad_habits":   []string{"Eat Late", "Too Much Soda"},
		"height":       "180",
	}, q.State().Answers)

	q.Back()
	assert.False(t, q.Completed())
	q.Reset()
	assert.Equal(t, State{Answers: profile.Answers{}}, q.State())
	q.Back()
	assert.Equal(t, 0, q.State().Step)
}

func TestQuiz_UnknownQuestion(t *testing.T) {
	q := NewQuiz(testQuestions(t))
	assert.True(t, apperr.Is(q.Answer("age", "18–25"), apperr.KindValidation))
}

func TestRestore_Clamps(t *testing.T) {
	questions := testQuestions(t)

	q := Restore(questions, State{Step: 99, Answers: profile.Answers{"fitness_goal": "Gain Muscle", "stale": "x"}})
	assert.Equal(t, 3, q.State().Step)
	assert.Equal(t, profile.Answers{"fitness_goal": "Gain Muscle"}, q.State().Answers)

	q = Restore(questions, State{Step: -4})
	assert.Equal(t, 0, q.State().Step)
}

func TestQuiz_StateIsACopy(t *testing.T) {
	q := NewQuiz(testQuestions(t))
	require.NoError(t, q.Answer("fitness_goal", "Gain Muscle"))

	s := q.State()
	s.Answers["fitness_goal"] = "Lose Weight"
	assert.Equal(t, "Gain Muscle", q.State().Answers["fitness_goal"])
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	profiles := profile.NewRepository(db)
	svc := NewService(testQuestions(t), NewStore(db), profiles)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, view.Question)
	assert.Equal(t, "fitness_goal", view.Question.ID)
	assert.Equal(t, 3, view.Total)

	_, err = svc.Complete(ctx, "u1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Answer(ctx, "u1", profile.Answers{"fitness_goal": "Lose Weight", "height": "172"})
	require.NoError(t, err)
	_, err = svc.Next(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.Next(ctx, "u1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Answer(ctx, "u1", profile.Answers{"bad_habits": []any{"Eat Late"}})
	require.NoError(t, err)
	_, err = svc.Next(ctx, "u1")
	require.NoError(t, err)
	view, err = svc.Next(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Nil(t, view.Question)

	p, err := svc.Complete(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Lose Weight", p.FitnessGoal)
	assert.Equal(t, []string{"Eat Late"}, p.BadHabits)
	require.NotNil(t, p.HeightCm)
	assert.Equal(t, 172.0, *p.HeightCm)

	view, err = svc.Back(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.State.Step)

	view, err = svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.State.Step)
	assert.Empty(t, view.State.Answers)
}
