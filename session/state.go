package session

import (
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
)

// State is the lifecycle state of the search box.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Snapshot is a copy of the controller state at one transition.
type Snapshot struct {
	// Version increases by one with every transition.
	Version uint64
	Query   string
	State   State
	// Outcome is the status of the last completed search, empty while idle.
	Outcome search.Status
	Results []core.SearchResult
	// Err is set in StateError, and in StateSuccess for partial results.
	Err     error
	Visible bool
}

// HasResults reports whether there is anything to show in the results panel.
func (s Snapshot) HasResults() bool {
	return len(s.Results) > 0
}

// PanelOpen reports whether the results panel should be drawn.
func (s Snapshot) PanelOpen() bool {
	return s.Visible && s.State != StateIdle
}
