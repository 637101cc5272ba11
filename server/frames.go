package server

import (
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
	"github.com/poiesic/claimdesk/session"
)

// Client frame types.
const (
	FrameQuery = "query"
	FrameHide  = "hide"
	FrameShow  = "show"
)

// Server frame types.
const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string              `json:"query"`
	Status  search.Status       `json:"status"`
	Results []core.SearchResult `json:"results"`
	Error   string              `json:"error,omitempty"`
}

// ClientFrame is a message from a websocket client.
type ClientFrame struct {
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
}

// ServerFrame is a message to a websocket client.
type ServerFrame struct {
	Type    string              `json:"type"`
	Session string              `json:"session"`
	Version uint64              `json:"version,omitempty"`
	Query   string              `json:"query"`
	State   session.State       `json:"state,omitempty"`
	Outcome search.Status       `json:"outcome,omitempty"`
	Results []core.SearchResult `json:"results"`
	Visible bool                `json:"visible"`
	Error   string              `json:"error,omitempty"`
}

func newSearchResponse(outcome search.Outcome) SearchResponse {
	resp := SearchResponse{
		Query:   outcome.Query,
		Status:  outcome.Status,
		Results: outcome.Results,
	}
	if resp.Results == nil {
		resp.Results = []core.SearchResult{}
	}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}
	return resp
}

func newSnapshotFrame(sessionID string, snapshot session.Snapshot) ServerFrame {
	frame := ServerFrame{
		Type:    FrameSnapshot,
		Session: sessionID,
		Version: snapshot.Version,
		Query:   snapshot.Query,
		State:   snapshot.State,
		Outcome: snapshot.Outcome,
		Results: snapshot.Results,
		Visible: snapshot.Visible,
	}
	if frame.Results == nil {
		frame.Results = []core.SearchResult{}
	}
	if snapshot.Err != nil {
		frame.Error = snapshot.Err.Error()
	}
	return frame
}

func newErrorFrame(sessionID string, err error) ServerFrame {
	return ServerFrame{
		Type:    FrameError,
		Session: sessionID,
		Results: []core.SearchResult{},
		Error:   err.Error(),
	}
}
