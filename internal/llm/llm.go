package llm

import (
	"context"

	"ai-fitness-coach/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Client is a TextGenerator that holds resources which must be released.
type Client interface {
	TextGenerator
	Close() error
}
