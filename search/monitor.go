package search

import (
	"github.com/poiesic/lunaris/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(matches []*core.KnowledgeMatch)
	VerbatimHit(chunk *core.KnowledgeChunk)
	Finish(results []*core.KnowledgeMatch)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.KnowledgeMatch) {}
func (n *noopMonitor) VerbatimHit(_ *core.KnowledgeChunk)          {}
func (n *noopMonitor) Finish(_ []*core.KnowledgeMatch)             {}
