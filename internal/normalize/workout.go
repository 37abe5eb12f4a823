package normalize

import (
	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
)

func parseExercise(v any) (fitness.WorkoutExercise, bool) {
	r, ok := asRecord(v)
	if !ok {
		return fitness.WorkoutExercise{}, false
	}
	name, ok := requiredText(r, "name")
	if !ok {
		return fitness.WorkoutExercise{}, false
	}
	sets, ok := asCount(r["sets"])
	if !ok {
		return fitness.WorkoutExercise{}, false
	}
	reps, ok := asCount(r["reps"])
	if !ok {
		return fitness.WorkoutExercise{}, false
	}
	rest, ok := asCount(r["rest_seconds"])
	if !ok {
		return fitness.WorkoutExercise{}, false
	}
	return fitness.WorkoutExercise{
		Name:        name,
		Sets:        sets,
		Reps:        reps,
		WeightKg:    optionalNumber(r, "weight_kg"),
		RestSeconds: rest,
		Notes:       optionalText(r, "notes"),
	}, true
}

// WorkoutPlan normalizes a decoded workout. It needs a name and at least one
// valid exercise.
func WorkoutPlan(payload any) (*fitness.WorkoutPlan, error) {
	const op = "normalize.WorkoutPlan"

	r, ok := asRecord(payload)
	if !ok {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "payload is not an object")
	}
	name, ok := requiredText(r, "name")
	if !ok {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "workout has no name")
	}
	exercises := filterList(r["exercises"], parseExercise)
	if len(exercises) == 0 {
		return nil, apperr.Errorf(apperr.KindNormalization, op, "workout has no valid exercises")
	}
	return &fitness.WorkoutPlan{
		Name:        name,
		Description: optionalText(r, "description"),
		Exercises:   exercises,
	}, nil
}
