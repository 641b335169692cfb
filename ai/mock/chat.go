package mock

import (
	"context"

	"github.com/poiesic/docgen/ai"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns Answer.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	// Answer is the canned reply used when CompleteFunc is nil.
	Answer string

	requests []ai.CompletionRequest
}

// NewMockChatModel creates a mock chat model that answers with an empty string.
// Note: Returns concrete type to allow test assertions via GetMockChatModel().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Complete records the request and returns the injected or canned answer.
func (m *MockChatModel) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return m.Answer, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	return len(m.requests)
}

// Requests returns the requests received so far, oldest first.
func (m *MockChatModel) Requests() []ai.CompletionRequest {
	return m.requests
}

// Reset clears recorded requests and injected behavior.
func (m *MockChatModel) Reset() {
	m.requests = nil
	m.CompleteFunc = nil
	m.Answer = ""
}
