package coach

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"ai-fitness-coach/internal/fitness"
	"ai-fitness-coach/internal/profile"
)

//go:embed prompts/*.md
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.md"))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

type workoutPromptData struct {
	FitnessGoal       string
	FitnessLevel      string
	ActivityLevel     string
	Preference        string
	DurationAvailable string
	HealthConditions  string
	StressLevel       string
	SleepHours        string

	Goal            string
	Difficulty      string
	DurationMinutes int
	Equipment       string
}

func buildWorkoutPrompt(p *profile.Profile, req WorkoutRequest) (string, error) {
	if p == nil {
		p = &profile.Profile{}
	}
	return render("workout.md", workoutPromptData{
		FitnessGoal:       or(p.FitnessGoal, "general fitness"),
		FitnessLevel:      or(p.CurrentFitnessLevel, "intermediate"),
		ActivityLevel:     or(p.ActivityLevel, "moderate"),
		Preference:        or(p.WorkoutPreference, "strength training"),
		DurationAvailable: or(p.WorkoutDuration, "45 minutes"),
		HealthConditions:  or(p.HealthConditions, "none"),
		StressLevel:       or(p.StressLevel, "moderate"),
		SleepHours:        or(p.SleepHours, "6-7 hours"),
		Goal:              or(req.Goal, "strength training"),
		Difficulty:        or(req.Difficulty, "intermediate"),
		DurationMinutes:   orInt(req.DurationMinutes, 45),
		Equipment:         or(req.Equipment, "full gym"),
	})
}

type mealPlanPromptData struct {
	FitnessGoal    string
	DietPreference string
	ActivityLevel  string
	TargetCalories string
	Macros         fitness.MacroTargets
	MealsPerDay    int
	Preferences    string
}

func buildMealPlanPrompt(p *profile.Profile, calories float64, macros fitness.MacroTargets, req MealPlanRequest) (string, error) {
	if p == nil {
		p = &profile.Profile{}
	}
	return render("meal_plan.md", mealPlanPromptData{
		FitnessGoal:    or(p.FitnessGoal, "maintain"),
		DietPreference: or(p.DietPreference, "balanced"),
		ActivityLevel:  or(p.ActivityLevel, "moderate"),
		TargetCalories: strconv.FormatFloat(calories, 'f', -1, 64),
		Macros:         macros,
		MealsPerDay:    orInt(req.MealsPerDay, 3),
		Preferences:    or(req.DietaryPreferences, "none"),
	})
}

func buildNutritionPrompt(p *profile.Profile, quiz profile.Answers) (string, error) {
	return render("nutrition.md", struct{ Summary string }{profile.BuildSummary(p, quiz)})
}

type coachPromptData struct {
	HasProfile bool
	Name       string
	Goal       string
	Level      string
	Weight     string
	Height     string
	Messages   []Message
}

func buildCoachPrompt(p *profile.Profile, messages []Message) (string, error) {
	data := coachPromptData{Messages: make([]Message, len(messages))}
	for i, m := range messages {
		data.Messages[i] = Message{Role: strings.ToUpper(m.Role), Content: m.Content}
	}
	if p != nil {
		data.HasProfile = true
		data.Name = or(p.DisplayName, "User")
		data.Goal = or(p.FitnessGoal, "Not set")
		data.Level = or(p.CurrentFitnessLevel, "Not specified")
		data.Weight = "Not specified"
		if p.WeightKg != nil {
			data.Weight = strconv.FormatFloat(*p.WeightKg, 'f', -1, 64) + " kg"
		}
		data.Height = "Not specified"
		if p.HeightCm != nil {
			data.Height = strconv.FormatFloat(*p.HeightCm, 'f', -1, 64) + " cm"
		}
	}
	return render("coach.md", data)
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func orInt(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
