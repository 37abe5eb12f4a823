package llm

import (
	"context"
	"fmt"

	"ai-fitness-coach/internal/config"
)

// Sampling temperatures per use. Plans want some variety; structured
// extraction from a scraped page wants none.
const (
	TemperatureCoach   = 0.5
	TemperatureExtract = 0.1
)

// NewFromConfig builds a client for the configured provider.
func NewFromConfig(ctx context.Context, cfg *config.Config, temperature float32) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, temperature)
	case config.ProviderGroq:
		return NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, temperature), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
