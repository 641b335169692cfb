package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBool(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"true", true},
		{"TRUE", true},
		{"  True\n", true},
		{"false", false},
		{"yes", false},
		{"true.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			model := mock.NewMockChatModel()
			model.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
				assert.Equal(t, "judge", req.SystemPrompt)
				assert.Equal(t, "is it?", req.UserPrompt)
				assert.False(t, req.JSON)
				return tt.answer, nil
			}

			got, err := ai.EvaluateBool(context.Background(), model, "judge", "is it?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, model.CallCount())
		})
	}

	t.Run("model error", func(t *testing.T) {
		model := mock.NewMockChatModel()
		model.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
			return "", errors.New("unavailable")
		}

		got, err := ai.EvaluateBool(context.Background(), model, "s", "u")
		require.Error(t, err)
		assert.False(t, got)
	})
}
