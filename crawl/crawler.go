// Package crawl defines the crawler abstraction used by ingestion.
//
// A Crawler turns a root URL into the raw pages of a site. Two
// implementations are provided: crawl/firecrawl talks to the hosted
// Firecrawl service and crawl/collector walks the site locally with colly.
package crawl

import (
	"context"
	"errors"

	"github.com/poiesic/docgen/core"
)

// Mode selects between a full-site crawl and a single-page scrape.
type Mode string

const (
	ModeCrawl  Mode = "crawl"
	ModeScrape Mode = "scrape"
)

var (
	// ErrCrawlFailed wraps every failure to retrieve pages.
	ErrCrawlFailed = errors.New("crawl failed")

	// ErrInvalidURL indicates the root URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

// Crawler retrieves the pages of a site rooted at a URL.
// Crawl blocks until the crawl finishes, which can take minutes.
type Crawler interface {
	Crawl(ctx context.Context, url string) ([]core.RawDocument, error)
}
