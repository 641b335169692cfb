package dispatch

import (
	"context"
	"strings"
)

// KeywordClassifier maps utterances to intents with fixed word rules.
// It needs no model and is used offline and in tests.
type KeywordClassifier struct{}

var _ IntentClassifier = KeywordClassifier{}

var (
	crawlWords  = []string{"crawl", "scrape", "ingest", "add website", "add site", "add the site"}
	searchWords = []string{"search", "find", "look up", "look for", "lookup", "query"}
	searchLeads = []string{"search for", "search", "find me", "find", "look up", "look for", "lookup", "query"}
	backWords   = []string{"back", "go back", "menu", "main menu", "start over", "cancel"}
)

const (
	triageClarify = "Would you like to search existing documents or crawl a website to add new content?"
	searchClarify = "What would you like to search for?"
	crawlClarify  = "Please provide the website URL to crawl. It should start with http:// or https://."
)

// Classify implements IntentClassifier.
func (KeywordClassifier) Classify(_ context.Context, agent Agent, utterance string, _ []Exchange) (Intent, error) {
	text := strings.TrimSpace(utterance)
	lower := strings.ToLower(text)
	url := findURL(text)

	switch agent.Role {
	case RoleTriage:
		switch {
		case url != "" || containsAny(lower, crawlWords):
			return Intent{Action: ActionTransferToCrawler}, nil
		case containsAny(lower, searchWords) || strings.HasSuffix(lower, "?"):
			return Intent{Action: ActionTransferToSearch}, nil
		default:
			return Intent{Action: ActionReply, Reply: triageClarify}, nil
		}

	case RoleSearch:
		if url != "" || containsAny(lower, crawlWords) || isBackRequest(lower) {
			return Intent{Action: ActionTransferToTriage}, nil
		}
		query := stripLead(text, searchLeads)
		if query == "" {
			return Intent{Action: ActionReply, Reply: searchClarify}, nil
		}
		return Intent{Action: ActionSearchDocuments, Argument: query}, nil

	case RoleCrawl:
		if url != "" {
			return Intent{Action: ActionCrawlWebsite, Argument: url}, nil
		}
		if containsAny(lower, searchWords) || isBackRequest(lower) {
			return Intent{Action: ActionTransferToTriage}, nil
		}
		if host := findHostLike(text); host != "" {
			return Intent{Action: ActionCrawlWebsite, Argument: host}, nil
		}
		return Intent{Action: ActionReply, Reply: crawlClarify}, nil
	}

	return Intent{Action: ActionReply, Reply: triageClarify}, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// isBackRequest reports whether the whole utterance asks to leave the
// current role. Queries that merely contain "back" do not count.
func isBackRequest(lower string) bool {
	lower = strings.Trim(lower, " .!?")
	for _, w := range backWords {
		if lower == w {
			return true
		}
	}
	return false
}

// findURL returns the first http(s) URL in text.
func findURL(text string) string {
	for _, field := range strings.Fields(text) {
		lower := strings.ToLower(field)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return strings.TrimRight(field, ".,;:!?)\"'")
		}
	}
	return ""
}

// findHostLike returns the first word that looks like a bare domain.
func findHostLike(text string) string {
	for _, field := range strings.Fields(text) {
		word := strings.TrimRight(field, ".,;:!?)\"'")
		if strings.Contains(word, ".") && !strings.HasPrefix(word, ".") && !strings.Contains(word, "@") {
			return word
		}
	}
	return ""
}

// stripLead removes the first matching leading phrase and any "docs about"
// filler, returning the remaining query.
func stripLead(text string, leads []string) string {
	lower := strings.ToLower(text)
	for _, lead := range leads {
		if strings.HasPrefix(lower, lead) {
			text = text[len(lead):]
			break
		}
	}
	text = strings.TrimSpace(text)
	lower = strings.ToLower(text)
	for _, filler := range []string{"documents about", "docs about", "documents on", "docs on", "for"} {
		if strings.HasPrefix(lower, filler+" ") {
			text = strings.TrimSpace(text[len(filler):])
			break
		}
	}
	return strings.Trim(text, " ?.!")
}
