// Package anthropic provides an ai.ChatModel backed by the Anthropic API.
//
// Embeddings are not offered by Anthropic, so NewProvider pairs this chat
// model with an OpenAI-compatible embedder from package ai/openai.
package anthropic

import (
	"context"
	"log/slog"

	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/ai/openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// ChatModel implements ai.ChatModel using the Anthropic messages API.
type ChatModel struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := anthropic.New(
		anthropic.WithToken(config.ChatAPIKey),
		anthropic.WithModel(config.ChatModel),
		anthropic.WithBaseURL(config.ChatHost),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "anthropic-chat"),
	}, nil
}

// NewChatModel creates a chat model using config.ChatHost, ChatModel and
// ChatAPIKey.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete sends a system/user prompt pair and returns the first choice.
// The API has no JSON mode; JSON requests rely on the prompt alone.
func (m *ChatModel) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return openai.Generate(ctx, m.client, m.logger, req, m.temperature, false)
}

// NewProvider creates an ai.AIProvider with Anthropic chat and
// OpenAI-compatible embeddings.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	chat, err := newChatModel(config)
	if err != nil {
		return nil, err
	}
	return openai.NewProviderWithChat(config, chat)
}
