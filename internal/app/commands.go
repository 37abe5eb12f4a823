package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/coach"
	"ai-fitness-coach/internal/normalize"
	"ai-fitness-coach/internal/onboarding"
)

// Plan kinds understood by Generate and NormalizeResponse.
const (
	KindWorkout   = "workout"
	KindMealPlan  = "meal-plan"
	KindNutrition = "nutrition"
	KindRecipe    = "recipe"
)

// GenerateOptions tune a plan generated from the command line.
type GenerateOptions struct {
	Goal           string
	Difficulty     string
	Duration       int
	Equipment      string
	TargetCalories float64
	MealsPerDay    int
	Preferences    string
}

// Generate creates a plan of the given kind for a user, saves it the same
// way the API does and writes it to out as JSON.
func (a *App) Generate(ctx context.Context, kind, userID string, opts GenerateOptions, out io.Writer) error {
	p, err := a.profiles.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	var result any
	switch kind {
	case KindWorkout:
		plan, err := a.coach.GenerateWorkout(ctx, p, coach.WorkoutRequest{
			Goal:            opts.Goal,
			Difficulty:      opts.Difficulty,
			DurationMinutes: opts.Duration,
			Equipment:       opts.Equipment,
		})
		if err != nil {
			return err
		}
		saved, err := a.workouts.Create(ctx, userID, *plan, opts.Difficulty, opts.Duration, true)
		if err != nil {
			return fmt.Errorf("failed to save workout: %w", err)
		}
		result = saved
	case KindMealPlan:
		plan, err := a.coach.GenerateMealPlan(ctx, p, coach.MealPlanRequest{
			TargetCalories:     opts.TargetCalories,
			DietaryPreferences: opts.Preferences,
			MealsPerDay:        opts.MealsPerDay,
		})
		if err != nil {
			return err
		}
		if _, err := a.mealPlans.Create(ctx, userID, *plan); err != nil {
			return fmt.Errorf("failed to save meal plan: %w", err)
		}
		result = plan
	case KindNutrition:
		if p == nil {
			return apperr.Errorf(apperr.KindNotFound, "app.Generate", "user %s has no profile", userID)
		}
		plan, err := a.coach.GenerateNutritionPlan(ctx, p, nil)
		if err != nil {
			return err
		}
		if err := a.nutrition.Upsert(ctx, userID, plan); err != nil {
			return fmt.Errorf("failed to save nutrition plan: %w", err)
		}
		result = plan
	default:
		return apperr.Errorf(apperr.KindValidation, "app.Generate", "unknown plan kind %q", kind)
	}

	a.logger.Info("plan generated", zap.String("kind", kind), zap.String("user_id", userID))
	return writeJSON(out, result)
}

// NormalizeResponse runs the extractor and the normalizer for kind over a
// raw AI response.
func NormalizeResponse(kind, text string) (any, error) {
	switch kind {
	case KindWorkout:
		return normalize.Parse(text, normalize.WorkoutPlan)
	case KindMealPlan:
		return normalize.Parse(text, normalize.MealPlan)
	case KindNutrition:
		return normalize.Parse(text, normalize.NutritionPlan)
	case KindRecipe:
		return normalize.Parse(text, normalize.Recipe)
	default:
		return nil, apperr.Errorf(apperr.KindValidation, "app.NormalizeResponse", "unknown plan kind %q", kind)
	}
}

// WriteNormalized normalizes text and writes the result to out as JSON.
func WriteNormalized(kind, text string, out io.Writer) error {
	v, err := NormalizeResponse(kind, text)
	if err != nil {
		return err
	}
	return writeJSON(out, v)
}

// Usage writes the AI token usage of the last days as a table.
func (a *App) Usage(ctx context.Context, days int, out io.Writer) error {
	usage, err := a.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		_, err := fmt.Fprintf(out, "No AI usage in the last %d days.\n", days)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCALLS\tPROMPT\tCOMPLETION")
	for _, u := range usage {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", u.Date, u.TotalExecution, u.TotalPrompt, u.TotalCompletion)
	}
	return tw.Flush()
}

// PrintQuestions writes the onboarding question bank.
func PrintQuestions(out io.Writer) error {
	questions, err := onboarding.LoadQuestions()
	if err != nil {
		return err
	}
	for i, q := range questions {
		if _, err := fmt.Fprintf(out, "%2d. [%s] %s (%s)\n", i+1, q.ID, q.Text, q.Type); err != nil {
			return err
		}
		if len(q.Options) > 0 {
			fmt.Fprintf(out, "    %s\n", strings.Join(q.Options, " | "))
		}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
