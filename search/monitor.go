package search

import (
	"github.com/poiesic/claimdesk/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	CacheHit(query string)
	AfterFetch(collection core.Collection, records []*core.Record, err error)
	AfterMerge(results []core.SearchResult)
	Finish(outcome Outcome)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                          {}
func (n *noopMonitor) CacheHit(_ string)                                       {}
func (n *noopMonitor) AfterFetch(_ core.Collection, _ []*core.Record, _ error) {}
func (n *noopMonitor) AfterMerge(_ []core.SearchResult)                        {}
func (n *noopMonitor) Finish(_ Outcome)                                        {}
