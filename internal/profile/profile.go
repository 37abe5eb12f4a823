// Package profile holds the user's fitness profile, built from onboarding
// quiz answers and the profile form, and the summary that feeds AI prompts.
package profile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"ai-fitness-coach/internal/apperr"
)

// Profile is stored as a single JSON document per user.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`

	FitnessGoal      string   `json:"fitness_goal,omitempty"`
	BodyType         string   `json:"body_type,omitempty"`
	DreamBody        string   `json:"dream_body,omitempty"`
	TargetZones      []string `json:"target_zones,omitempty"`
	SportsExperience string   `json:"sports_experience,omitempty"`
	BestCondition    string   `json:"best_condition,omitempty"`
	WorkoutFrequency string   `json:"workout_frequency,omitempty"`

	PopularCuisines []string `json:"popular_cuisines,omitempty"`
	NutritionHabits string   `json:"nutrition_habits,omitempty"`
	CookingTime     string   `json:"cooking_time,omitempty"`
	IncludeVeggies  []string `json:"include_veggies,omitempty"`
	IncludeProducts []string `json:"include_products,omitempty"`
	DietPreference  string   `json:"diet_preference,omitempty"`

	DailyRoutine string   `json:"daily_routine,omitempty"`
	EnergyLevel  string   `json:"energy_level,omitempty"`
	WaterIntake  string   `json:"water_intake,omitempty"`
	BadHabits    []string `json:"bad_habits,omitempty"`
	LifeEvent    string   `json:"life_event,omitempty"`

	Height       string `json:"height,omitempty"`
	Weight       string `json:"weight,omitempty"`
	TargetWeight string `json:"target_weight,omitempty"`
	Age          string `json:"age,omitempty"`

	HeightCm       *float64 `json:"height_cm,omitempty"`
	WeightKg       *float64 `json:"weight_kg,omitempty"`
	TargetWeightKg *float64 `json:"target_weight_kg,omitempty"`
	DateOfBirth    string   `json:"date_of_birth,omitempty"`
	ActivityLevel  string   `json:"activity_level,omitempty"`

	CurrentFitnessLevel string `json:"current_fitness_level,omitempty"`
	WorkoutPreference   string `json:"workout_preference,omitempty"`
	WorkoutDuration     string `json:"workout_duration,omitempty"`
	HealthConditions    string `json:"health_conditions,omitempty"`
	StressLevel         string `json:"stress_level,omitempty"`
	SleepHours          string `json:"sleep_hours,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Answers maps quiz field keys to a string, a list of strings, or nil.
type Answers map[string]any

type field struct {
	text func(*Profile) *string
	list func(*Profile) *[]string
}

// quizFields are the profile keys a quiz may write, in display order.
var quizFields = []struct {
	key string
	field
}{
	{"fitness_goal", field{text: func(p *Profile) *string { return &p.FitnessGoal }}},
	{"body_type", field{text: func(p *Profile) *string { return &p.BodyType }}},
	{"dream_body", field{text: func(p *Profile) *string { return &p.DreamBody }}},
	{"target_zones", field{list: func(p *Profile) *[]string { return &p.TargetZones }}},
	{"sports_experience", field{text: func(p *Profile) *string { return &p.SportsExperience }}},
	{"best_condition", field{text: func(p *Profile) *string { return &p.BestCondition }}},
	{"workout_frequency", field{text: func(p *Profile) *string { return &p.WorkoutFrequency }}},
	{"popular_cuisines", field{list: func(p *Profile) *[]string { return &p.PopularCuisines }}},
	{"nutrition_habits", field{text: func(p *Profile) *string { return &p.NutritionHabits }}},
	{"cooking_time", field{text: func(p *Profile) *string { return &p.CookingTime }}},
	{"include_veggies", field{list: func(p *Profile) *[]string { return &p.IncludeVeggies }}},
	{"include_products", field{list: func(p *Profile) *[]string { return &p.IncludeProducts }}},
	{"diet_preference", field{text: func(p *Profile) *string { return &p.DietPreference }}},
	{"daily_routine", field{text: func(p *Profile) *string { return &p.DailyRoutine }}},
	{"energy_level", field{text: func(p *Profile) *string { return &p.EnergyLevel }}},
	{"water_intake", field{text: func(p *Profile) *string { return &p.WaterIntake }}},
	{"bad_habits", field{list: func(p *Profile) *[]string { return &p.BadHabits }}},
	{"life_event", field{text: func(p *Profile) *string { return &p.LifeEvent }}},
	{"height", field{text: func(p *Profile) *string { return &p.Height }}},
	{"weight", field{text: func(p *Profile) *string { return &p.Weight }}},
	{"target_weight", field{text: func(p *Profile) *string { return &p.TargetWeight }}},
	{"age", field{text: func(p *Profile) *string { return &p.Age }}},
}

func lookupField(key string) (field, bool) {
	for _, f := range quizFields {
		if f.key == key {
			return f.field, true
		}
	}
	return field{}, false
}

// IsQuizField reports whether key is a profile field a quiz answer can set.
func IsQuizField(key string) bool {
	_, ok := lookupField(key)
	return ok
}

// ApplyAnswers writes quiz answers into p. Keys that are not quiz fields and
// values of the wrong shape are validation errors; p is left untouched when
// any answer is rejected. A nil value clears the field.
func ApplyAnswers(p *Profile, answers Answers) error {
	const op = "profile.ApplyAnswers"

	updated := *p
	for key, value := range answers {
		f, ok := lookupField(key)
		if !ok {
			return apperr.Errorf(apperr.KindValidation, op, "unknown quiz field %q", key)
		}
		if f.text != nil {
			s, err := textValue(value)
			if err != nil {
				return apperr.E(apperr.KindValidation, op, fmt.Errorf("%s: %w", key, err))
			}
			*f.text(&updated) = s
			continue
		}
		list, err := listValue(value)
		if err != nil {
			return apperr.E(apperr.KindValidation, op, fmt.Errorf("%s: %w", key, err))
		}
		*f.list(&updated) = list
	}

	// Height and weight are typed free-form. The numeric copies follow the
	// answer and are cleared when it no longer parses.
	if _, ok := answers["height"]; ok {
		updated.HeightCm = measure(updated.Height)
	}
	if _, ok := answers["weight"]; ok {
		updated.WeightKg = measure(updated.Weight)
	}

	*p = updated
	return nil
}

func measure(s string) *float64 {
	v, ok := parseMeasure(s)
	if !ok {
		return nil
	}
	return &v
}

func textValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func listValue(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, found %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}

func parseMeasure(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(strings.ToLower(s)), "cmkg"))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

// ExtractQuizData returns the quiz answers already stored in the profile.
// Empty fields are omitted.
func ExtractQuizData(p *Profile) Answers {
	answers := Answers{}
	if p == nil {
		return answers
	}
	for _, f := range quizFields {
		if f.text != nil {
			if s := *f.text(p); s != "" {
				answers[f.key] = s
			}
			continue
		}
		if list := *f.list(p); len(list) > 0 {
			answers[f.key] = list
		}
	}
	return answers
}

// BuildSummary renders the profile as prompt context. Quiz answers whose key
// is not already mentioned are appended in key order.
func BuildSummary(p *Profile, quiz Answers) string {
	if p == nil {
		return "No profile data was provided."
	}

	height := or(p.Height, "not specified")
	if p.HeightCm != nil {
		height = fmt.Sprintf("%s cm", formatNumber(*p.HeightCm))
	}
	weight := or(p.Weight, "not specified")
	if p.WeightKg != nil {
		weight = fmt.Sprintf("%s kg", formatNumber(*p.WeightKg))
	}

	lines := []string{
		"Name: " + p.DisplayName,
		"Goal/Focus: " + or(p.FitnessGoal, "not specified"),
		"Diet Preference: " + or(p.DietPreference, "not specified"),
		"Activity Level: " + or(p.ActivityLevel, or(p.DailyRoutine, "not specified")),
		"Height: " + height,
		"Weight: " + weight,
		"Target Weight: " + or(p.TargetWeight, "not specified"),
		"Cuisines enjoyed: " + or(strings.Join(p.PopularCuisines, ", "), "not specified"),
		"Nutrition habits: " + or(p.NutritionHabits, "not specified"),
	}

	keys := make([]string, 0, len(quiz))
	for key := range quiz {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := answerText(quiz[key])
		if value == "" || mentioned(lines, key) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", key, value))
	}

	return strings.Join(lines, "\n")
}

func mentioned(lines []string, key string) bool {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), key) {
			return true
		}
	}
	return false
}

func answerText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
