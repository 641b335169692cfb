package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/ingestion"
	"github.com/poiesic/docgen/search"
)

const (
	// DefaultHistorySize is the number of exchanges kept for the classifier.
	DefaultHistorySize = 6

	// maxHops bounds the number of transfers within one Handle call.
	maxHops = 3

	sampleLength = 200
)

// Ingester crawls and stores a site. *ingestion.Pipeline implements it.
type Ingester interface {
	CrawlAndStore(ctx context.Context, url string) (*ingestion.Report, error)
}

// Retriever searches stored documents. *search.Searcher implements it.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error)
}

// Response is the dispatcher's answer to one utterance.
type Response struct {
	Role   Role   // Role active after handling
	Action Action // Action that produced Text
	Text   string
}

// Dispatcher routes utterances between the triage, search and crawl roles.
// It is not safe for concurrent use.
type Dispatcher struct {
	ingester    Ingester
	retriever   Retriever
	classifier  IntentClassifier
	role        Role
	history     []Exchange
	historySize int
	notify      func(string)
	logger      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithNotifier sets a callback for out-of-band messages such as the
// warning that a crawl may take minutes.
func WithNotifier(notify func(string)) Option {
	return func(d *Dispatcher) error {
		d.notify = notify
		return nil
	}
}

// WithHistorySize sets how many exchanges are kept.
func WithHistorySize(size int) Option {
	return func(d *Dispatcher) error {
		if size < 0 {
			return fmt.Errorf("history size must not be negative, got %d", size)
		}
		d.historySize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger.With("component", "dispatch")
		return nil
	}
}

// NewDispatcher creates a dispatcher starting in the triage role.
func NewDispatcher(ingester Ingester, retriever Retriever, classifier IntentClassifier, opts ...Option) (*Dispatcher, error) {
	if ingester == nil {
		return nil, ErrIngesterRequired
	}
	if retriever == nil {
		return nil, ErrSearcherRequired
	}
	if classifier == nil {
		return nil, ErrClassifierRequired
	}

	d := &Dispatcher{
		ingester:    ingester,
		retriever:   retriever,
		classifier:  classifier,
		role:        RoleTriage,
		historySize: DefaultHistorySize,
		notify:      func(string) {},
		logger:      slog.Default().With("component", "dispatch"),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.notify == nil {
		d.notify = func(string) {}
	}
	return d, nil
}

// Role returns the active role.
func (d *Dispatcher) Role() Role {
	return d.role
}

// History returns the retained exchanges, oldest first.
func (d *Dispatcher) History() []Exchange {
	return d.history
}

// Reset returns to the triage role and clears history.
func (d *Dispatcher) Reset() {
	d.role = RoleTriage
	d.history = nil
}

// Handle classifies utterance in the active role and acts on it. A transfer
// switches roles and classifies the same utterance again in the new role.
// Pipeline failures are reported in the response text; the error is only
// set when classification fails.
func (d *Dispatcher) Handle(ctx context.Context, utterance string) (Response, error) {
	startRole := d.role

	for hop := 0; ; hop++ {
		agent := agents[d.role]
		intent, err := d.classifier.Classify(ctx, agent, utterance, d.history)
		if err != nil {
			d.role = startRole
			return Response{Role: d.role}, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
		}

		if !agent.Allows(intent.Action) {
			d.logger.Warn("rejected action", "role", d.role, "action", intent.Action)
			d.role = startRole
			return d.respond(utterance, ActionReply,
				fmt.Sprintf("The %s cannot perform %q.", agent.Name, intent.Action)), nil
		}

		if target, ok := transferTarget(intent.Action); ok {
			if !CanTransfer(d.role, target) {
				d.role = startRole
				return d.respond(utterance, ActionReply,
					fmt.Sprintf("The %s cannot transfer to %s.", agent.Name, target)), nil
			}
			if hop >= maxHops {
				d.logger.Warn("too many transfers", "utterance", utterance, "role", d.role)
				d.role = RoleTriage
				return d.respond(utterance, ActionReply, triageClarify), nil
			}
			d.logger.Debug("transfer", "from", d.role, "to", target)
			d.role = target
			continue
		}

		switch intent.Action {
		case ActionSearchDocuments:
			return d.respond(utterance, intent.Action, d.searchDocuments(ctx, intent.Argument, utterance)), nil
		case ActionCrawlWebsite:
			return d.respond(utterance, intent.Action, d.crawlWebsite(ctx, intent.Argument)), nil
		default:
			return d.respond(utterance, ActionReply, intent.Reply), nil
		}
	}
}

func (d *Dispatcher) respond(utterance string, action Action, text string) Response {
	d.history = append(d.history, Exchange{User: utterance, Assistant: text})
	if len(d.history) > d.historySize {
		d.history = d.history[len(d.history)-d.historySize:]
	}
	return Response{Role: d.role, Action: action, Text: text}
}

func (d *Dispatcher) searchDocuments(ctx context.Context, query, utterance string) string {
	if query == "" {
		query = strings.TrimSpace(utterance)
	}
	results, err := d.retriever.Search(ctx, query, 0)
	if err != nil {
		return fmt.Sprintf("Error searching documents: %v", err)
	}
	return search.Format(results)
}

func (d *Dispatcher) crawlWebsite(ctx context.Context, url string) string {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return crawlClarify
	}

	d.notify(fmt.Sprintf("Crawling %s. This may take a few minutes for large sites.", url))
	report, err := d.ingester.CrawlAndStore(ctx, url)
	if err != nil {
		return fmt.Sprintf("Error crawling website: %v", err)
	}
	return CrawlSummary(url, report)
}

// CrawlSummary reports the stored count and a sample of the first chunk.
func CrawlSummary(url string, report *ingestion.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Successfully crawled %s and stored %d document chunks.\n", url, report.Stored)
	if report.Failed > 0 {
		fmt.Fprintf(&sb, "%d chunks could not be stored.\n", report.Failed)
	}
	if len(report.Chunks) > 0 {
		sample := []rune(report.Chunks[0].PageContent)
		if len(sample) > sampleLength {
			sample = sample[:sampleLength]
		}
		fmt.Fprintf(&sb, "\nSample content from first chunk:\n%s...", string(sample))
	}
	return sb.String()
}
