package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ai-fitness-coach/internal/app"
	"ai-fitness-coach/internal/config"
	"ai-fitness-coach/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := serve(ctx, cfg, logger)
	stop()
	logger.Sync()
	os.Exit(code)
}

// serve runs the server until ctx is done and returns the process exit code.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) int {
	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	logger.Info("server exiting")
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// 2. Database, AI clients and services
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	// 3. Optional Telegram webhook
	var webhook http.Handler
	bot, err := application.TelegramBot()
	if err != nil {
		return err
	}
	if bot != nil {
		defer bot.Close()
		webhook = bot
		logger.Info("telegram bot enabled")
	}

	// 4. Nightly retention cleanup
	scheduler := cron.New()
	err = scheduler.AddFunc("@daily", func() {
		if _, err := application.Cleanup(context.Background(), cfg.MetricsRetentionDays, time.Now()); err != nil {
			logger.Error("scheduled cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 5. Serve until a signal arrives
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           application.Handler(webhook, time.Now()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
