package anthropic

import (
	"testing"

	"github.com/poiesic/docgen/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	config := ai.NewConfig(
		ai.WithChatBackend(ai.BackendAnthropic),
		ai.WithChatHost("https://api.anthropic.com"),
		ai.WithChatModel("claude-3-5-haiku-latest"),
		ai.WithAPIKey("test-key"),
	)

	provider, err := NewProvider(config)
	require.NoError(t, err)
	defer provider.Close()

	_, ok := provider.ChatModel().(*ChatModel)
	assert.True(t, ok, "chat model should be the anthropic implementation")
	assert.NotNil(t, provider.Embedder())
	assert.Equal(t, "https://api.anthropic.com/v1", config.ChatHost)
}

func TestNewChatModel_InvalidConfig(t *testing.T) {
	_, err := NewChatModel(ai.NewConfig(ai.WithChatModel("")))
	require.Error(t, err)
}
