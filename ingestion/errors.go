package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a document store is not provided.
	ErrStoreRequired = errors.New("document store required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrCrawlerRequired is returned by CrawlAndStore when the pipeline has no crawler.
	ErrCrawlerRequired = errors.New("crawler required")

	// ErrChunkingFailed wraps a chunker failure during CrawlAndStore.
	ErrChunkingFailed = errors.New("chunking failed")
)
