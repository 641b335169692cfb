package dispatch

import "errors"

var (
	// ErrIngesterRequired is returned when no ingestion pipeline is provided.
	ErrIngesterRequired = errors.New("ingester required")

	// ErrSearcherRequired is returned when no searcher is provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrClassifierRequired is returned when no intent classifier is provided.
	ErrClassifierRequired = errors.New("intent classifier required")

	// ErrChatModelRequired is returned by NewLLMClassifier without a chat model.
	ErrChatModelRequired = errors.New("chat model required")

	// ErrClassificationFailed wraps classifier failures.
	ErrClassificationFailed = errors.New("intent classification failed")
)
