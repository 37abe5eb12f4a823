package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ai-fitness-coach/internal/app"
	"ai-fitness-coach/internal/auth"
	"ai-fitness-coach/internal/config"
	"ai-fitness-coach/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := os.Getenv("DATABASE_PATH")
		if path == "" {
			path = "data/fitness.db"
		}
		db, err := database.NewDB(path, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date.\n", path)
		return nil
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <workout|meal-plan|nutrition|recipe> <file>",
	Short: "Run a saved AI response through the extractor and normalizer",
	Long: `Reads a raw AI response from a file ("-" for stdin), extracts the JSON
object from it and prints the normalized plan. Useful for checking how a
problematic model reply is handled without calling the model again.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[1] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return app.WriteNormalized(args[0], string(data), cmd.OutOrStdout())
	},
}

var (
	generateUser string
	generateOpts app.GenerateOptions
)

var generateCmd = &cobra.Command{
	Use:       "generate <workout|meal-plan|nutrition>",
	Short:     "Generate and save a plan for a user",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{app.KindWorkout, app.KindMealPlan, app.KindNutrition},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Generate(ctx, args[0], generateUser, generateOpts, cmd.OutOrStdout())
		})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect and prune AI execution metrics",
}

var usageDays int

var metricsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show daily AI token usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Usage(ctx, usageDays, cmd.OutOrStdout())
		})
	},
}

var cleanupDays int

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old metric records and expired Telegram sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Cleanup(ctx, cleanupDays, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d old metric records and %d expired sessions.\n", res.Metrics, res.Sessions)
			return nil
		})
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Onboarding quiz tools",
}

var quizQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the onboarding question bank",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.PrintQuestions(cmd.OutOrStdout())
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API access token for local testing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		user, _ := cmd.Flags().GetString("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTAudience).Issue(auth.User{ID: user}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateUser, "user", "", "User id to generate for")
	_ = generateCmd.MarkFlagRequired("user")
	generateCmd.Flags().StringVar(&generateOpts.Goal, "goal", "", "Workout goal")
	generateCmd.Flags().StringVar(&generateOpts.Difficulty, "difficulty", "", "Workout difficulty (beginner, intermediate, advanced)")
	generateCmd.Flags().IntVar(&generateOpts.Duration, "duration", 0, "Workout duration in minutes")
	generateCmd.Flags().StringVar(&generateOpts.Equipment, "equipment", "", "Available equipment")
	generateCmd.Flags().Float64Var(&generateOpts.TargetCalories, "calories", 0, "Daily calorie target for meal plans")
	generateCmd.Flags().IntVar(&generateOpts.MealsPerDay, "meals", 0, "Meals per day")
	generateCmd.Flags().StringVar(&generateOpts.Preferences, "preferences", "", "Dietary preferences")

	metricsUsageCmd.Flags().IntVar(&usageDays, "days", 7, "Number of days to report")
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Keep records for the last N days")
	metricsCmd.AddCommand(metricsUsageCmd, metricsCleanupCmd)

	quizCmd.AddCommand(quizQuestionsCmd)

	tokenCmd.Flags().String("user", "", "Subject of the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
