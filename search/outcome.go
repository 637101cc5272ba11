package search

import "github.com/poiesic/claimdesk/core"

// Status tags the result of a search.
type Status string

const (
	// StatusEmpty means the query was blank or nothing matched.
	StatusEmpty Status = "empty"
	// StatusSuccess means at least one result was found and every read succeeded.
	StatusSuccess Status = "success"
	// StatusPartial means one collection read failed and the results come
	// from the other. Only produced when partial results are enabled.
	StatusPartial Status = "partial"
	// StatusError means the search could not be completed.
	StatusError Status = "error"
)

// Outcome is the tagged result of one search.
type Outcome struct {
	Query   string
	Status  Status
	Results []core.SearchResult
	// Err is set for StatusError and StatusPartial.
	Err error
}

// Failed reports whether the search could not be completed.
func (o Outcome) Failed() bool {
	return o.Status == StatusError
}
