package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	DatabasePath string
	Port         string

	AuthJWTSecret   string
	AuthJWTAudience string

	GenerationTimeout time.Duration
	ChatTimeout       time.Duration

	LogLevel string
	LogDev   bool

	MetricsRetentionDays int

	// Telegram Config (optional, the bot is only mounted when a token is set)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	TelegramAdminID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if provider == ProviderGemini && geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if provider == ProviderGroq && groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	jwtSecret := os.Getenv("AUTH_JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET environment variable not set")
	}

	generationTimeout, err := getDuration("GENERATION_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	chatTimeout, err := getDuration("CHAT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	retention, err := strconv.Atoi(getEnv("METRICS_RETENTION_DAYS", "30"))
	if err != nil || retention <= 0 {
		return nil, fmt.Errorf("invalid METRICS_RETENTION_DAYS %q", os.Getenv("METRICS_RETENTION_DAYS"))
	}

	allowedIDs, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if s := os.Getenv("TELEGRAM_ADMIN_ID"); s != "" {
		adminID, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
	}

	logDev, _ := strconv.ParseBool(os.Getenv("LOG_DEV"))

	return &Config{
		LLMProvider:            provider,
		GeminiAPIKey:           geminiAPIKey,
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:             groqAPIKey,
		GroqModel:              getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		DatabasePath:           getEnv("DATABASE_PATH", "data/fitness.db"),
		Port:                   getEnv("PORT", "8080"),
		AuthJWTSecret:          jwtSecret,
		AuthJWTAudience:        getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
		GenerationTimeout:      generationTimeout,
		ChatTimeout:            chatTimeout,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogDev:                 logDev,
		MetricsRetentionDays:   retention,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		TelegramAdminID:        adminID,
	}, nil
}

// TelegramEnabled reports whether the Telegram bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// DataDir is the directory holding the database file.
func (c *Config) DataDir() string {
	return filepath.Dir(c.DatabasePath)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
