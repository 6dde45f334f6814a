package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-travel-planner/internal/config"
)

var (
	_ TextGenerator = (*GeminiClient)(nil)
	_ Closer        = (*GeminiClient)(nil)
)

func TestNewGeminiClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewGeminiClient(ctx, &config.Config{GeminiAPIKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, defaultGeminiModel, client.modelName)
	require.NoError(t, client.Close())

	gen, err := NewTextGenerator(ctx, &config.Config{TextBackend: config.BackendGemini, GeminiAPIKey: "secret", TextModel: "gemini-pro"})
	require.NoError(t, err)
	gc, ok := gen.(*GeminiClient)
	require.True(t, ok)
	assert.Equal(t, "gemini-pro", gc.modelName)
	require.NoError(t, gc.Close())
}
