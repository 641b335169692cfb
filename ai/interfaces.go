package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionRequest is a single-turn prompt for a ChatModel.
type CompletionRequest struct {
	// SystemPrompt sets the model's instructions. May be empty.
	SystemPrompt string

	// UserPrompt is the user turn.
	UserPrompt string

	// JSON asks the model to answer with a single JSON object.
	// Providers that cannot enforce it still receive the request as text.
	JSON bool
}

// ChatModel answers prompts with free text.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends the request and returns the model's answer.
	// An empty answer is not an error.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and ChatModel instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the chat completion service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
