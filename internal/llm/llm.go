package llm

import (
	"context"
	"fmt"

	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is the single capability the itinerary core needs from a
// generative backend: prompt in, free text out.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewTextGenerator builds the backend selected by cfg.TextBackend.
// The returned generator may also implement Closer.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.TextBackend {
	case config.BackendGemini:
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendGroq:
		return NewGroqClient(cfg), nil
	case config.BackendOllama:
		return NewOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported text backend %q", cfg.TextBackend)
	}
}
