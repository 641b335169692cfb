// Package collector implements crawl.Crawler locally with colly. The crawl
// stays on the root URL's host and stops at a configurable depth and page
// count.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly"

	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/crawl"
)

const (
	DefaultMaxDepth       = 2
	DefaultPageLimit      = 100
	DefaultUserAgent      = "docgen-collector/1.0"
	DefaultRequestTimeout = 30 * time.Second
)

// Collector crawls a site over HTTP.
type Collector struct {
	maxDepth       int
	pageLimit      int
	userAgent      string
	requestTimeout time.Duration
	logger         *slog.Logger
}

var _ crawl.Crawler = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector) error

// WithMaxDepth sets how many link hops from the root are followed.
// The root page is depth 1.
func WithMaxDepth(depth int) Option {
	return func(c *Collector) error {
		if depth <= 0 {
			return fmt.Errorf("max depth must be positive, got %d", depth)
		}
		c.maxDepth = depth
		return nil
	}
}

// WithPageLimit caps the number of pages returned.
func WithPageLimit(limit int) Option {
	return func(c *Collector) error {
		if limit <= 0 {
			return fmt.Errorf("page limit must be positive, got %d", limit)
		}
		c.pageLimit = limit
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Collector) error {
		c.userAgent = ua
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Collector) error {
		c.requestTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "collector")
		return nil
	}
}

// New creates a local collector.
func New(opts ...Option) (*Collector, error) {
	c := &Collector{
		maxDepth:       DefaultMaxDepth,
		pageLimit:      DefaultPageLimit,
		userAgent:      DefaultUserAgent,
		requestTimeout: DefaultRequestTimeout,
		logger:         slog.Default().With("component", "collector"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Crawl walks the site rooted at rawURL and returns one document per HTML page.
func (c *Collector) Crawl(ctx context.Context, rawURL string) ([]core.RawDocument, error) {
	root, err := crawl.ParseRoot(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crawl.ErrCrawlFailed, err)
	}

	collector := colly.NewCollector(
		colly.UserAgent(c.userAgent),
		colly.IgnoreRobotsTxt(),
		colly.MaxDepth(c.maxDepth),
	)
	collector.SetRequestTimeout(c.requestTimeout)

	var (
		docs     []core.RawDocument
		firstErr error
	)
	full := func() bool { return len(docs) >= c.pageLimit }

	collector.OnResponse(func(r *colly.Response) {
		if full() || !isHTML(r.Headers.Get("Content-Type")) {
			return
		}
		pageURL := r.Request.URL.String()
		doc, err := parsePage(r.Body, bodyContentType(r.Headers.Get("Content-Type")), pageURL)
		if err != nil {
			c.logger.Warn("failed to parse page", "url", pageURL, "err", err)
			return
		}
		docs = append(docs, doc)
		c.logger.Debug("collected page", "url", pageURL, "depth", r.Request.Depth)
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if ctx.Err() != nil || full() {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		u, err := url.Parse(link)
		if err != nil || u.Host != root.Host || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		u.Fragment = ""
		// Already visited and too deep are reported as errors and skipped.
		_ = e.Request.Visit(u.String())
	})

	collector.OnError(func(r *colly.Response, err error) {
		c.logger.Warn("request failed", "url", r.Request.URL.String(), "status", r.StatusCode, "err", err)
		if firstErr == nil {
			firstErr = err
		}
	})

	if err := collector.Visit(root.String()); err != nil && firstErr == nil {
		firstErr = err
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", crawl.ErrCrawlFailed, err)
	}
	if len(docs) == 0 {
		if firstErr == nil {
			firstErr = errors.New("no html pages retrieved")
		}
		return nil, fmt.Errorf("%w: %s: %w", crawl.ErrCrawlFailed, root, firstErr)
	}
	c.logger.Info("crawl finished", "url", root.String(), "pages", len(docs))
	return docs, nil
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// bodyContentType returns the content type to decode a colly body with.
// colly has already transcoded bodies whose header declares a charset.
func bodyContentType(header string) string {
	if strings.Contains(strings.ToLower(header), "charset") {
		return "text/html; charset=utf-8"
	}
	return header
}
