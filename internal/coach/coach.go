// Package coach turns user requests into AI prompts and AI responses into
// normalized plans. Every generation is bounded by a timeout and recorded in
// the metrics store; nothing is retried.
package coach

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
	"ai-fitness-coach/internal/llm"
	"ai-fitness-coach/internal/normalize"
	"ai-fitness-coach/internal/profile"
	"ai-fitness-coach/internal/shared"
)

const defaultTargetCalories = 2000

// MetricsRecorder stores per-call token usage.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

type WorkoutRequest struct {
	Goal            string
	Difficulty      string
	DurationMinutes int
	Equipment       string
}

type MealPlanRequest struct {
	TargetCalories     float64
	DietaryPreferences string
	MealsPerDay        int
}

// Message is one turn of a coach conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options bounds how long generations may run.
type Options struct {
	GenerationTimeout time.Duration
	ChatTimeout       time.Duration
}

// Coach generates plans and chat replies.
type Coach struct {
	textGen  llm.TextGenerator
	recorder MetricsRecorder
	logger   *zap.Logger
	opts     Options
}

// New creates a Coach. recorder may be nil.
func New(textGen llm.TextGenerator, recorder MetricsRecorder, logger *zap.Logger, opts Options) *Coach {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 60 * time.Second
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = 30 * time.Second
	}
	return &Coach{textGen: textGen, recorder: recorder, logger: logger, opts: opts}
}

// GenerateWorkout asks the AI for a workout tailored to the profile.
func (c *Coach) GenerateWorkout(ctx context.Context, p *profile.Profile, req WorkoutRequest) (*fitness.WorkoutPlan, error) {
	const op = "coach.GenerateWorkout"

	prompt, err := buildWorkoutPrompt(p, req)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, op, err)
	}
	text, err := c.generate(ctx, op, shared.AgentWorkout, c.opts.GenerationTimeout, prompt)
	if err != nil {
		return nil, err
	}
	return parseResponse(c.logger, op, text, normalize.WorkoutPlan)
}

// GenerateMealPlan asks the AI for a daily meal plan. The macro targets for
// the requested calories and the profile's goal are computed locally, sent in
// the prompt and attached to the result.
func (c *Coach) GenerateMealPlan(ctx context.Context, p *profile.Profile, req MealPlanRequest) (*fitness.MealPlan, error) {
	const op = "coach.GenerateMealPlan"

	calories := req.TargetCalories
	if calories <= 0 {
		calories = defaultTargetCalories
	}
	goal := "General Fitness"
	if p != nil && p.FitnessGoal != "" {
		goal = p.FitnessGoal
	}
	macros := fitness.Macros(calories, goal)

	prompt, err := buildMealPlanPrompt(p, calories, macros, req)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, op, err)
	}
	text, err := c.generate(ctx, op, shared.AgentMealPlan, c.opts.GenerationTimeout, prompt)
	if err != nil {
		return nil, err
	}
	plan, err := parseResponse(c.logger, op, text, normalize.MealPlan)
	if err != nil {
		return nil, err
	}
	plan.TargetMacros = &macros
	return plan, nil
}

// GenerateNutritionPlan asks the AI for a weekly nutrition plan built from
// the profile summary.
func (c *Coach) GenerateNutritionPlan(ctx context.Context, p *profile.Profile, quiz profile.Answers) (*fitness.NutritionPlan, error) {
	const op = "coach.GenerateNutritionPlan"

	if quiz == nil {
		quiz = profile.ExtractQuizData(p)
	}
	prompt, err := buildNutritionPrompt(p, quiz)
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, op, err)
	}
	text, err := c.generate(ctx, op, shared.AgentNutrition, c.opts.GenerationTimeout, prompt)
	if err != nil {
		return nil, err
	}
	return parseResponse(c.logger, op, text, normalize.NutritionPlan)
}

// Chat returns the coach's reply to a conversation. messages must not be
// empty.
func (c *Coach) Chat(ctx context.Context, p *profile.Profile, messages []Message) (string, error) {
	const op = "coach.Chat"

	if len(messages) == 0 {
		return "", apperr.Errorf(apperr.KindValidation, op, "no messages")
	}
	prompt, err := buildCoachPrompt(p, messages)
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, err)
	}
	return c.generate(ctx, op, shared.AgentCoach, c.opts.ChatTimeout, prompt)
}

func (c *Coach) generate(ctx context.Context, op, agent string, timeout time.Duration, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.textGen.GenerateContent(genCtx, prompt)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			return "", apperr.E(apperr.KindTimeout, op, err)
		}
		return "", apperr.E(apperr.KindDownstream, op, err)
	}

	c.logger.Debug("ai generation finished",
		zap.String("agent", agent),
		zap.String("model", resp.Usage.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("latency", latency),
	)
	if c.recorder != nil {
		meta := shared.AgentMeta{AgentName: agent, Usage: resp.Usage, Latency: latency}
		if err := c.recorder.RecordMeta(ctx, meta); err != nil {
			c.logger.Warn("failed to record ai metrics", zap.String("agent", agent), zap.Error(err))
		}
	}
	return resp.Content, nil
}

// parseResponse extracts and normalizes text, logging why a response could
// not be used.
func parseResponse[T any](logger *zap.Logger, op, text string, normalizer func(any) (*T, error)) (*T, error) {
	v, err := normalize.Parse(text, normalizer)
	if err != nil {
		logger.Warn("unusable ai response",
			zap.String("op", op),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Int("length", len(text)),
			zap.Error(err),
		)
		return nil, err
	}
	return v, nil
}
