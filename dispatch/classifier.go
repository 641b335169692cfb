package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docgen/ai"
)

// Exchange is one user utterance and the dispatcher's answer.
type Exchange struct {
	User      string
	Assistant string
}

// Intent is the classified meaning of an utterance for a role.
type Intent struct {
	Action   Action
	Argument string // Search query or crawl URL
	Reply    string // Text for ActionReply
}

// IntentClassifier decides what the active agent should do with an utterance.
type IntentClassifier interface {
	Classify(ctx context.Context, agent Agent, utterance string, history []Exchange) (Intent, error)
}

// LLMClassifier asks a chat model to pick an action in JSON mode.
type LLMClassifier struct {
	model  ai.ChatModel
	logger *slog.Logger
}

var _ IntentClassifier = (*LLMClassifier)(nil)

// NewLLMClassifier creates a classifier backed by model.
func NewLLMClassifier(model ai.ChatModel) (*LLMClassifier, error) {
	if model == nil {
		return nil, ErrChatModelRequired
	}
	return &LLMClassifier{
		model:  model,
		logger: slog.Default().With("component", "llm-classifier"),
	}, nil
}

type intentJSON struct {
	Action   string `json:"action"`
	Argument string `json:"argument"`
	Reply    string `json:"reply"`
}

// Classify sends the agent instructions, its actions and the recent history
// to the model and parses its JSON answer.
func (c *LLMClassifier) Classify(ctx context.Context, agent Agent, utterance string, history []Exchange) (Intent, error) {
	answer, err := c.model.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: systemPrompt(agent),
		UserPrompt:   userPrompt(utterance, history),
		JSON:         true,
	})
	if err != nil {
		return Intent{}, err
	}

	var parsed intentJSON
	if err := json.Unmarshal([]byte(ai.CleanJSON(answer)), &parsed); err != nil {
		c.logger.Warn("unparseable classifier answer", "answer", answer, "err", err)
		return Intent{}, fmt.Errorf("parsing classifier answer: %w", err)
	}

	intent := Intent{
		Action:   Action(strings.ToLower(strings.TrimSpace(parsed.Action))),
		Argument: strings.TrimSpace(parsed.Argument),
		Reply:    strings.TrimSpace(parsed.Reply),
	}
	if intent.Action == "" {
		intent.Action = ActionReply
	}
	c.logger.Debug("classified utterance", "role", agent.Role, "action", intent.Action, "argument", intent.Argument)
	return intent, nil
}

func systemPrompt(agent Agent) string {
	var sb strings.Builder
	sb.WriteString(agent.Instructions)
	sb.WriteString("\n\nYou can take exactly one of these actions:\n")
	for _, a := range agent.Actions {
		sb.WriteString("- ")
		sb.WriteString(string(a))
		sb.WriteString(actionHelp[a])
		sb.WriteString("\n")
	}
	sb.WriteString("- reply: answer the user directly, for example to ask a clarifying question\n")
	sb.WriteString("\nRespond only with a JSON object of the form ")
	sb.WriteString(`{"action": "<action>", "argument": "<query or url, if any>", "reply": "<text, for reply>"}`)
	return sb.String()
}

var actionHelp = map[Action]string{
	ActionTransferToSearch:  ": hand the conversation to the Search Agent",
	ActionTransferToCrawler: ": hand the conversation to the Crawler Agent",
	ActionTransferToTriage:  ": hand the conversation back to the Document Management Agent",
	ActionSearchDocuments:   ": search stored documents; argument is the search query",
	ActionCrawlWebsite:      ": crawl a website and store its content; argument is the URL",
}

func userPrompt(utterance string, history []Exchange) string {
	if len(history) == 0 {
		return utterance
	}
	var sb strings.Builder
	sb.WriteString("Conversation so far:\n")
	for _, ex := range history {
		sb.WriteString("User: ")
		sb.WriteString(ex.User)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(ex.Assistant)
		sb.WriteString("\n")
	}
	sb.WriteString("\nUser: ")
	sb.WriteString(utterance)
	return sb.String()
}
