// Package ingestion turns crawled pages and ad-hoc text into stored documents.
//
// CrawlAndStore crawls a site, splits every page into overlapping chunks,
// normalizes each chunk's metadata, optionally embeds it, and inserts it.
// Chunks are stored one at a time in chunker order. A failed insert is
// logged and counted in the Report while the remaining chunks are still
// attempted. A crawl or chunking failure aborts the run.
//
// AddDocument stores a single piece of text with a source label.
package ingestion
