// Package server exposes the coach services over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ai-fitness-coach/internal/auth"
	"ai-fitness-coach/internal/chat"
	"ai-fitness-coach/internal/clipper"
	"ai-fitness-coach/internal/coach"
	"ai-fitness-coach/internal/meals"
	"ai-fitness-coach/internal/metrics"
	"ai-fitness-coach/internal/nutrition"
	"ai-fitness-coach/internal/onboarding"
	"ai-fitness-coach/internal/profile"
	"ai-fitness-coach/internal/progress"
	"ai-fitness-coach/internal/workout"
)

// Deps are the services behind the API.
type Deps struct {
	Verifier  *auth.Verifier
	Coach     *coach.Coach
	Clipper   *clipper.Clipper
	Profiles  *profile.Repository
	Quiz      *onboarding.Service
	Workouts  *workout.Repository
	MealPlans *meals.Repository
	Nutrition *nutrition.Repository
	Progress  *progress.Repository
	Chats     *chat.Repository

	// Telegram is mounted at /telegram/webhook when set.
	Telegram http.Handler

	// DataDir is reported on by /health.
	DataDir   string
	StartedAt time.Time
}

// Server routes HTTP requests to the services.
type Server struct {
	deps     Deps
	logger   *zap.Logger
	validate *validator.Validate
}

// New creates a Server.
func New(deps Deps, logger *zap.Logger) *Server {
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}
	return &Server{deps: deps, logger: logger, validate: newValidator()}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, echoRequestID, s.logRequests, s.recoverer)

	r.Get("/health", s.health)
	if s.deps.Telegram != nil {
		r.Method(http.MethodPost, "/telegram/webhook", s.deps.Telegram)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate-workout", s.generateWorkout)
			r.Post("/generate-meal-plan", s.generateMealPlan)
			r.Post("/fitness-coach", s.fitnessCoach)
		})

		r.Get("/nutrition-plan", s.getNutritionPlan)
		r.Post("/nutrition-plan", s.generateNutritionPlan)

		r.Get("/profile", s.getProfile)
		r.Put("/profile", s.putProfile)

		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", s.getQuiz)
			r.Get("/questions", s.quizQuestions)
			r.Post("/save-answers", s.saveQuizAnswers)
			r.Put("/answers", s.answerQuiz)
			r.Post("/next", s.quizNext)
			r.Post("/back", s.quizBack)
			r.Post("/reset", s.quizReset)
			r.Post("/complete", s.quizComplete)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.listWorkouts)
			r.Post("/", s.createWorkout)
			r.Get("/{id}", s.getWorkout)
			r.Delete("/{id}", s.deleteWorkout)
			r.Post("/{id}/logs", s.logWorkout)
		})
		r.Get("/workout-logs", s.listWorkoutLogs)

		r.Route("/meal-plans", func(r chi.Router) {
			r.Get("/", s.listMealPlans)
			r.Post("/", s.createMealPlan)
			r.Get("/{id}", s.getMealPlan)
			r.Delete("/{id}", s.deleteMealPlan)
		})

		r.Get("/progress/measurements", s.listMeasurements)
		r.Post("/progress/measurements", s.addMeasurement)
		r.Get("/dashboard", s.dashboard)

		r.Post("/conversations", s.openConversation)
		r.Get("/conversations/{id}/messages", s.conversationMessages)

		r.Post("/recipes/clip", s.clipRecipe)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metrics.GetSysHealth(s.deps.DataDir, s.deps.StartedAt))
}
