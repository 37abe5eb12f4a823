package server

import (
	"net/http"
	"time"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/fitness"
	"ai-fitness-coach/internal/progress"
)

type exerciseInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Sets        int      `json:"sets" validate:"min=1,max=100"`
	Reps        int      `json:"reps" validate:"min=1,max=1000"`
	WeightKg    *float64 `json:"weight_kg" validate:"omitempty,gte=0,lte=1000"`
	RestSeconds int      `json:"rest_seconds" validate:"min=0,max=3600"`
	Notes       string   `json:"notes" validate:"max=1000"`
}

type createWorkoutRequest struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=2000"`
	Difficulty      string          `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationMinutes int             `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	AIGenerated     bool            `json:"ai_generated"`
	Exercises       []exerciseInput `json:"exercises" validate:"required,min=1,max=50,dive"`
}

type logWorkoutRequest struct {
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=600"`
	Notes           string `json:"notes" validate:"max=2000"`
}

type mealInput struct {
	Name         string   `json:"name" validate:"required,max=200"`
	MealType     string   `json:"meal_type" validate:"max=50"`
	Calories     float64  `json:"calories" validate:"gte=0,lte=10000"`
	ProteinG     *float64 `json:"protein_g" validate:"omitempty,gte=0"`
	CarbsG       *float64 `json:"carbs_g" validate:"omitempty,gte=0"`
	FatG         *float64 `json:"fat_g" validate:"omitempty,gte=0"`
	Ingredients  []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Instructions []string `json:"instructions" validate:"dive,required"`
}

type createMealPlanRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	Meals       []mealInput `json:"meals" validate:"required,min=1,max=20,dive"`
}

type measurementRequest struct {
	WeightKg     *float64   `json:"weight_kg" validate:"omitempty,gt=0,lte=700"`
	BodyFatPct   *float64   `json:"body_fat_pct" validate:"omitempty,gte=0,lte=100"`
	MuscleMassKg *float64   `json:"muscle_mass_kg" validate:"omitempty,gt=0,lte=300"`
	ChestCm      *float64   `json:"chest_cm" validate:"omitempty,gt=0"`
	WaistCm      *float64   `json:"waist_cm" validate:"omitempty,gt=0"`
	HipsCm       *float64   `json:"hips_cm" validate:"omitempty,gt=0"`
	BicepsCm     *float64   `json:"biceps_cm" validate:"omitempty,gt=0"`
	ThighsCm     *float64   `json:"thighs_cm" validate:"omitempty,gt=0"`
	Notes        string     `json:"notes" validate:"max=2000"`
	MeasuredAt   *time.Time `json:"measured_at"`
}

// --- Workouts ---

func (s *Server) listWorkouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Workouts.List(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.listWorkouts", err), "Failed to load workouts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createWorkout(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to save workout"

	var req createWorkoutRequest
	if err := s.bind(r, &req); err != nil {
		s.fail(w, r, err, generic)
		return
	}

	plan := fitness.WorkoutPlan{
		Name:        req.Name,
		Description: req.Description,
		Exercises:   make([]fitness.WorkoutExercise, len(req.Exercises)),
	}
	for i, e := range req.Exercises {
		plan.Exercises[i] = fitness.WorkoutExercise(e)
	}

	created, err := s.deps.Workouts.Create(r.Context(), userID(r), plan, req.Difficulty, req.DurationMinutes, req.AIGenerated)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.createWorkout", err), generic)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	wo, err := s.deps.Workouts.Get(r.Context(), userID(r), id)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.getWorkout", err), "Failed to load workout")
		return
	}
	if wo == nil {
		writeError(w, http.StatusNotFound, "Workout not found")
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	deleted, err := s.deps.Workouts.Delete(r.Context(), userID(r), id)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.deleteWorkout", err), "Failed to delete workout")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Workout not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logWorkout(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to log workout"

	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, generic)
		return
	}
	var req logWorkoutRequest
	if err := decode(r, &req, true); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	if err := s.check(&req); err != nil {
		s.fail(w, r, err, generic)
		return
	}

	entry, err := s.deps.Workouts.LogCompletion(r.Context(), userID(r), id, req.DurationMinutes, req.Notes)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.logWorkout", err), generic)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "Workout not found")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listWorkoutLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.deps.Workouts.Logs(r.Context(), userID(r), queryLimit(r, 50, 500))
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.listWorkoutLogs", err), "Failed to load workout logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// --- Meal plans ---

func (s *Server) listMealPlans(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.MealPlans.List(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.listMealPlans", err), "Failed to load meal plans")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createMealPlan(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to save meal plan"

	var req createMealPlanRequest
	if err := s.bind(r, &req); err != nil {
		s.fail(w, r, err, generic)
		return
	}

	plan := fitness.MealPlan{
		Name:        req.Name,
		Description: req.Description,
		Meals:       make([]fitness.GeneratedMeal, len(req.Meals)),
	}
	for i, m := range req.Meals {
		plan.Meals[i] = fitness.GeneratedMeal(m)
	}

	created, err := s.deps.MealPlans.Create(r.Context(), userID(r), plan)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.createMealPlan", err), generic)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getMealPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	plan, err := s.deps.MealPlans.Get(r.Context(), userID(r), id)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.getMealPlan", err), "Failed to load meal plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Meal plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) deleteMealPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	deleted, err := s.deps.MealPlans.Delete(r.Context(), userID(r), id)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.deleteMealPlan", err), "Failed to delete meal plan")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Meal plan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Progress ---

func (s *Server) addMeasurement(w http.ResponseWriter, r *http.Request) {
	const generic = "Failed to save measurement"

	var req measurementRequest
	if err := s.bind(r, &req); err != nil {
		s.fail(w, r, err, generic)
		return
	}
	m := progress.Measurement{
		WeightKg:     req.WeightKg,
		BodyFatPct:   req.BodyFatPct,
		MuscleMassKg: req.MuscleMassKg,
		ChestCm:      req.ChestCm,
		WaistCm:      req.WaistCm,
		HipsCm:       req.HipsCm,
		BicepsCm:     req.BicepsCm,
		ThighsCm:     req.ThighsCm,
		Notes:        req.Notes,
	}
	if req.MeasuredAt != nil {
		m.MeasuredAt = *req.MeasuredAt
	}

	saved, err := s.deps.Progress.Add(r.Context(), userID(r), m)
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.addMeasurement", err), generic)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) listMeasurements(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Progress.List(r.Context(), userID(r), queryLimit(r, 100, 1000))
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.listMeasurements", err), "Failed to load measurements")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Progress.Dashboard(r.Context(), userID(r))
	if err != nil {
		s.fail(w, r, apperr.E(apperr.KindDownstream, "server.dashboard", err), "Failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
