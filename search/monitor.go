package search

import (
	"github.com/poiesic/docgen/core"
)

// Mode identifies how a search ranks documents.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, mode Mode)
	AfterEmbedding(dimensions int)
	AfterStoreQuery(hits []*core.ScoredDocument)
	Finish(results []core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Mode)                   {}
func (n *noopMonitor) AfterEmbedding(_ int)                     {}
func (n *noopMonitor) AfterStoreQuery(_ []*core.ScoredDocument) {}
func (n *noopMonitor) Finish(_ []core.SearchResult)             {}
