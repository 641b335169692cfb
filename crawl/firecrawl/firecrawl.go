// Package firecrawl implements crawl.Crawler on the hosted Firecrawl
// service through the firecrawl-go SDK.
package firecrawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	fc "github.com/mendableai/firecrawl-go"
	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/crawl"
)

const (
	DefaultBaseURL      = "https://api.firecrawl.dev"
	DefaultLimit        = 100
	DefaultPollInterval = 2 * time.Second
)

// ErrAPIKeyRequired is returned by New when no API key is given.
var ErrAPIKeyRequired = errors.New("firecrawl API key is required")

// Crawler implements crawl.Crawler against Firecrawl.
type Crawler struct {
	app          *fc.FirecrawlApp
	baseURL      string
	limit        int
	mode         crawl.Mode
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

var _ crawl.Crawler = (*Crawler)(nil)

// Option configures a Crawler.
type Option func(*Crawler) error

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Crawler) error {
		c.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithLimit caps the number of pages crawled.
func WithLimit(limit int) Option {
	return func(c *Crawler) error {
		if limit <= 0 {
			return fmt.Errorf("limit must be positive, got %d", limit)
		}
		c.limit = limit
		return nil
	}
}

// WithMode selects crawl (whole site) or scrape (single page).
func WithMode(mode crawl.Mode) Option {
	return func(c *Crawler) error {
		switch mode {
		case crawl.ModeCrawl, crawl.ModeScrape:
			c.mode = mode
			return nil
		default:
			return fmt.Errorf("unknown mode %q", mode)
		}
	}
}

// WithPollInterval sets how often crawl status is checked. The SDK polls
// in whole seconds and never faster than every two seconds.
func WithPollInterval(d time.Duration) Option {
	return func(c *Crawler) error {
		if d < 0 {
			return fmt.Errorf("poll interval must not be negative, got %s", d)
		}
		c.pollInterval = d
		return nil
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) error {
		if client != nil {
			c.httpClient = client
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "firecrawl")
		return nil
	}
}

// New creates a Firecrawl crawler.
func New(apiKey string, opts ...Option) (*Crawler, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	c := &Crawler{
		baseURL:      DefaultBaseURL,
		limit:        DefaultLimit,
		mode:         crawl.ModeCrawl,
		pollInterval: DefaultPollInterval,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       slog.Default().With("component", "firecrawl"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	app, err := fc.NewFirecrawlApp(apiKey, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl client: %w", err)
	}
	app.Client = c.httpClient
	c.app = app
	return c, nil
}

// Crawl retrieves url in the configured mode and returns each page as
// markdown with its metadata. The SDK cannot be cancelled, so a cancelled
// ctx returns immediately and the request finishes in the background.
func (c *Crawler) Crawl(ctx context.Context, url string) ([]core.RawDocument, error) {
	if _, err := crawl.ParseRoot(url); err != nil {
		return nil, fmt.Errorf("%w: %w", crawl.ErrCrawlFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", crawl.ErrCrawlFailed, err)
	}

	fetch := c.crawl
	if c.mode == crawl.ModeScrape {
		fetch = c.scrape
	}
	pages, err := c.await(ctx, func() ([]*fc.FirecrawlDocument, error) {
		return fetch(url)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crawl.ErrCrawlFailed, err)
	}

	docs := make([]core.RawDocument, 0, len(pages))
	for _, p := range pages {
		if p == nil {
			continue
		}
		docs = append(docs, toRawDocument(p))
	}
	c.logger.Info("crawl finished", "url", url, "mode", c.mode, "pages", len(docs))
	return docs, nil
}

type fetchResult struct {
	pages []*fc.FirecrawlDocument
	err   error
}

func (c *Crawler) await(ctx context.Context, fetch func() ([]*fc.FirecrawlDocument, error)) ([]*fc.FirecrawlDocument, error) {
	done := make(chan fetchResult, 1)
	go func() {
		pages, err := fetch()
		done <- fetchResult{pages: pages, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.pages, res.err
	}
}

func (c *Crawler) scrape(url string) ([]*fc.FirecrawlDocument, error) {
	doc, err := c.app.ScrapeURL(url, &fc.ScrapeParams{Formats: []string{"markdown"}})
	if err != nil {
		return nil, err
	}
	return []*fc.FirecrawlDocument{doc}, nil
}

func (c *Crawler) crawl(url string) ([]*fc.FirecrawlDocument, error) {
	limit := c.limit
	params := &fc.CrawlParams{
		Limit:         &limit,
		ScrapeOptions: fc.ScrapeParams{Formats: []string{"markdown"}},
	}
	c.logger.Debug("crawl started", "url", url, "limit", limit)
	status, err := c.app.CrawlURL(url, params, nil, int(c.pollInterval/time.Second))
	if err != nil {
		return nil, err
	}
	return status.Data, nil
}

// toRawDocument passes metadata through under its JSON names except that
// url is filled from sourceURL when missing.
func toRawDocument(doc *fc.FirecrawlDocument) core.RawDocument {
	meta := map[string]any{}
	if doc.Metadata != nil {
		if data, err := json.Marshal(doc.Metadata); err == nil {
			_ = json.Unmarshal(data, &meta)
		}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if _, ok := meta[core.FieldURL]; !ok {
		if src, ok := meta["sourceURL"]; ok {
			meta[core.FieldURL] = src
		}
	}
	return core.RawDocument{PageContent: doc.Markdown, Metadata: meta}
}
