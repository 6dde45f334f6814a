package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/shared"

	openai "github.com/sashabaranov/go-openai"
)

const (
	groqBaseURL        = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOllamaModel = "llama3.1"
)

// chatClient talks to any OpenAI-compatible chat completions endpoint.
// Groq and a local Ollama server are both served through it.
type chatClient struct {
	client      *openai.Client
	backend     string
	model       string
	temperature float32
}

// NewGroqClient creates a client for the Groq API.
func NewGroqClient(cfg *config.Config) TextGenerator {
	model := cfg.TextModel
	if model == "" {
		model = defaultGroqModel
	}
	return newChatClient(config.BackendGroq, groqBaseURL, cfg.GroqAPIKey, model)
}

// NewOllamaClient creates a client for a local Ollama server.
func NewOllamaClient(cfg *config.Config) TextGenerator {
	model := cfg.TextModel
	if model == "" {
		model = defaultOllamaModel
	}
	return newChatClient(config.BackendOllama, cfg.OllamaURL, "ollama", model)
}

func newChatClient(backend, baseURL, apiKey, model string) *chatClient {
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = baseURL
	oc.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &chatClient{
		client:      openai.NewClientWithConfig(oc),
		backend:     backend,
		model:       model,
		temperature: 0.7,
	}
}

// GenerateContent sends a prompt as a single user message and returns the reply.
func (c *chatClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("%s api error: %w", c.backend, err)
	}

	if len(resp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return ContentResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			Backend:          c.backend,
			Model:            model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
