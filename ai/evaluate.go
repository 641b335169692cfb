package ai

import (
	"context"
	"strings"
)

// EvaluateBool asks the model a yes/no question and reports whether it
// answered "true". The answer is trimmed and compared case-insensitively;
// anything else, including "yes", is false.
func EvaluateBool(ctx context.Context, model ChatModel, systemPrompt, userPrompt string) (bool, error) {
	answer, err := model.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "true", nil
}
