package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ai-fitness-coach/internal/auth"
	"ai-fitness-coach/internal/chat"
	"ai-fitness-coach/internal/clipper"
	"ai-fitness-coach/internal/coach"
	"ai-fitness-coach/internal/config"
	"ai-fitness-coach/internal/database"
	"ai-fitness-coach/internal/llm"
	"ai-fitness-coach/internal/meals"
	"ai-fitness-coach/internal/metrics"
	"ai-fitness-coach/internal/nutrition"
	"ai-fitness-coach/internal/onboarding"
	"ai-fitness-coach/internal/profile"
	"ai-fitness-coach/internal/progress"
	"ai-fitness-coach/internal/server"
	"ai-fitness-coach/internal/telegram"
	"ai-fitness-coach/internal/workout"
)

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	closers []func() error

	metricsStore *metrics.Store
	coach        *coach.Coach
	clipper      *clipper.Clipper
	quiz         *onboarding.Service

	profiles  *profile.Repository
	workouts  *workout.Repository
	mealPlans *meals.Repository
	nutrition *nutrition.Repository
	progress  *progress.Repository
	chats     *chat.Repository
	sessions  *telegram.SessionRepository
}

// New opens the database, applies migrations and builds the AI clients and
// services described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	coachLLM, err := llm.NewFromConfig(ctx, cfg, llm.TemperatureCoach)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize coach model: %w", err)
	}
	extractLLM, err := llm.NewFromConfig(ctx, cfg, llm.TemperatureExtract)
	if err != nil {
		coachLLM.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize extraction model: %w", err)
	}

	a, err := assemble(cfg, logger, db.SQL, coachLLM, extractLLM)
	if err != nil {
		extractLLM.Close()
		coachLLM.Close()
		db.Close()
		return nil, err
	}
	a.closers = []func() error{extractLLM.Close, coachLLM.Close, db.Close}
	return a, nil
}

// assemble wires the services over an open database and text generators.
func assemble(cfg *config.Config, logger *zap.Logger, db *sql.DB, coachGen, extractGen llm.TextGenerator) (*App, error) {
	questions, err := onboarding.LoadQuestions()
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz questions: %w", err)
	}

	a := &App{
		cfg:          cfg,
		logger:       logger,
		metricsStore: metrics.NewStore(db),
		profiles:     profile.NewRepository(db),
		workouts:     workout.NewRepository(db),
		mealPlans:    meals.NewRepository(db),
		nutrition:    nutrition.NewRepository(db),
		progress:     progress.NewRepository(db),
		chats:        chat.NewRepository(db),
		sessions:     telegram.NewSessionRepository(db),
	}
	a.coach = coach.New(coachGen, a.metricsStore, logger.Named("coach"), coach.Options{
		GenerationTimeout: cfg.GenerationTimeout,
		ChatTimeout:       cfg.ChatTimeout,
	})
	a.clipper = clipper.NewClipper(extractGen, a.metricsStore, logger.Named("clipper"), clipper.Options{
		Timeout: cfg.GenerationTimeout,
	})
	a.quiz = onboarding.NewService(questions, onboarding.NewStore(db), a.profiles)
	return a, nil
}

// Close releases the AI clients and the database.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// TelegramBot builds the webhook bot. It returns nil when no bot token is
// configured.
func (a *App) TelegramBot() (*telegram.Bot, error) {
	if !a.cfg.TelegramEnabled() {
		return nil, nil
	}
	return telegram.NewBot(a.cfg, telegram.Deps{
		Coach:     a.coach,
		Clipper:   a.clipper,
		Profiles:  a.profiles,
		Workouts:  a.workouts,
		MealPlans: a.mealPlans,
		Nutrition: a.nutrition,
		Chats:     a.chats,
		Sessions:  a.sessions,
		Metrics:   a.metricsStore,
	}, a.logger)
}

// Handler builds the HTTP API. webhook is mounted at /telegram/webhook when
// not nil.
func (a *App) Handler(webhook http.Handler, startedAt time.Time) http.Handler {
	deps := server.Deps{
		Verifier:  auth.NewVerifier(a.cfg.AuthJWTSecret, a.cfg.AuthJWTAudience),
		Coach:     a.coach,
		Clipper:   a.clipper,
		Profiles:  a.profiles,
		Quiz:      a.quiz,
		Workouts:  a.workouts,
		MealPlans: a.mealPlans,
		Nutrition: a.nutrition,
		Progress:  a.progress,
		Chats:     a.chats,
		Telegram:  webhook,
		DataDir:   a.cfg.DataDir(),
		StartedAt: startedAt,
	}
	return server.New(deps, a.logger.Named("http")).Router()
}

// CleanupResult counts the rows removed by Cleanup.
type CleanupResult struct {
	Metrics  int64
	Sessions int64
}

// Cleanup drops AI metrics older than the retention window and expired
// Telegram sessions.
func (a *App) Cleanup(ctx context.Context, retentionDays int, now time.Time) (CleanupResult, error) {
	var res CleanupResult
	var err error

	if res.Metrics, err = a.metricsStore.Cleanup(ctx, retentionDays); err != nil {
		return res, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	if res.Sessions, err = a.sessions.CleanupExpired(ctx, now); err != nil {
		return res, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	a.logger.Info("cleanup finished",
		zap.Int64("metrics_removed", res.Metrics),
		zap.Int64("sessions_removed", res.Sessions),
	)
	return res, nil
}
