package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
	"github.com/poiesic/claimdesk/session"
	"github.com/poiesic/claimdesk/storage"
	"github.com/poiesic/claimdesk/storage/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(t *testing.T) *search.Searcher {
	t.Helper()
	claims := mock.NewMockRepository(core.CollectionClaims,
		&core.Record{Title: "Steel Price Variation Claim", Status: core.StatusSubmitted},
		&core.Record{Title: "Extension of time", Status: core.StatusDraft},
	)
	variations := mock.NewMockRepository(core.CollectionVariations,
		&core.Record{Title: "Steel grade substitution", Status: core.StatusUnderReview},
	)
	searcher, err := search.NewSearcher(claims, variations)
	require.NoError(t, err)
	t.Cleanup(searcher.Release)
	return searcher
}

func newTestServer(t *testing.T, querier session.Querier, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	opts = append([]Option{WithDebounce(10 * time.Millisecond)}, opts...)
	srv, err := NewServer(querier, opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestNewServer(t *testing.T) {
	searcher := newTestSearcher(t)

	t.Run("valid configuration", func(t *testing.T) {
		srv, err := NewServer(searcher, WithLogger(nil), WithRateLimit(2, 1), WithDebounce(time.Second))
		require.NoError(t, err)
		assert.NotNil(t, srv)
	})

	t.Run("nil querier", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.Equal(t, ErrQuerierRequired, err)
	})

	t.Run("invalid rate limit", func(t *testing.T) {
		_, err := NewServer(searcher, WithRateLimit(0, 1))
		assert.Equal(t, ErrInvalidRateLimit, err)
		_, err = NewServer(searcher, WithRateLimit(1, 0))
		assert.Equal(t, ErrInvalidRateLimit, err)
	})

	t.Run("invalid debounce", func(t *testing.T) {
		_, err := NewServer(searcher, WithDebounce(-time.Millisecond))
		assert.Equal(t, session.ErrInvalidDebounce, err)
	})
}

func getSearch(t *testing.T, ts *httptest.Server, query string) SearchResponse {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/search?q=" + url.QueryEscape(query))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleSearch(t *testing.T) {
	_, ts := newTestServer(t, newTestSearcher(t))

	t.Run("matches", func(t *testing.T) {
		body := getSearch(t, ts, "steel")
		assert.Equal(t, "steel", body.Query)
		assert.Equal(t, search.StatusSuccess, body.Status)
		require.Len(t, body.Results, 2)
		assert.Equal(t, core.ResultTypeClaim, body.Results[0].Type)
		assert.Equal(t, core.ModuleClaims, body.Results[0].Module)
		assert.Equal(t, core.ResultTypeVariation, body.Results[1].Type)
		assert.Empty(t, body.Error)
	})

	t.Run("blank query", func(t *testing.T) {
		body := getSearch(t, ts, "  ")
		assert.Equal(t, search.StatusEmpty, body.Status)
		assert.NotNil(t, body.Results)
		assert.Empty(t, body.Results)
	})

	t.Run("raw json uses wire field names", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/search?q=extension")
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		results := body["results"].([]any)
		require.Len(t, results, 1)
		result := results[0].(map[string]any)
		assert.Equal(t, "Extension of time", result["title"])
		assert.Equal(t, "claim", result["type"])
		assert.Equal(t, "Claims Management", result["module"])
		assert.Equal(t, "draft", result["status"])
		assert.Contains(t, result, "id")
		assert.Contains(t, result, "created_at")
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/search?q=steel", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHandleSearch_FailureIsReportedInBody(t *testing.T) {
	claims := mock.NewMockRepository(core.CollectionClaims)
	claims.FindMatchingFunc = func(context.Context, storage.Pattern, int) ([]*core.Record, error) {
		return nil, errors.New("disk on fire")
	}
	searcher, err := search.NewSearcher(claims, mock.NewMockRepository(core.CollectionVariations))
	require.NoError(t, err)
	defer searcher.Release()

	_, ts := newTestServer(t, searcher)
	body := getSearch(t, ts, "steel")
	assert.Equal(t, search.StatusError, body.Status)
	assert.Empty(t, body.Results)
	assert.Contains(t, body.Error, "disk on fire")
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, newTestSearcher(t))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerFrame) bool) ServerFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var frame ServerFrame
		require.NoError(t, conn.ReadJSON(&frame))
		if match(frame) {
			return frame
		}
	}
}

func TestWebSocket_Session(t *testing.T) {
	srv, ts := newTestServer(t, newTestSearcher(t))
	conn := dial(t, ts)

	first := readUntil(t, conn, func(ServerFrame) bool { return true })
	assert.Equal(t, FrameSnapshot, first.Type)
	assert.Equal(t, session.StateIdle, first.State)
	_, err := uuid.Parse(first.Session)
	assert.NoError(t, err)
	assert.Equal(t, 1, srv.SessionCount())

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameQuery, Query: "steel"}))
	frame := readUntil(t, conn, func(f ServerFrame) bool { return f.State == session.StateSuccess })
	assert.Equal(t, first.Session, frame.Session)
	assert.Equal(t, "steel", frame.Query)
	assert.Equal(t, search.StatusSuccess, frame.Outcome)
	assert.Len(t, frame.Results, 2)
	assert.True(t, frame.Visible)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameHide}))
	frame = readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameSnapshot })
	assert.False(t, frame.Visible)
	assert.Len(t, frame.Results, 2)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameShow}))
	frame = readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameSnapshot })
	assert.True(t, frame.Visible)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameQuery, Query: ""}))
	frame = readUntil(t, conn, func(f ServerFrame) bool {
		return f.State == session.StateIdle && f.Version > 1
	})
	assert.Empty(t, frame.Results)
}

func TestWebSocket_BadFrames(t *testing.T) {
	_, ts := newTestServer(t, newTestSearcher(t))
	conn := dial(t, ts)
	readUntil(t, conn, func(ServerFrame) bool { return true })

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: "dance"}))
	frame := readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameError })
	assert.Contains(t, frame.Error, "dance")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame = readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameError })
	assert.Contains(t, frame.Error, ErrUnknownFrame.Error())

	// The connection survives bad frames
	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameQuery, Query: "extension"}))
	frame = readUntil(t, conn, func(f ServerFrame) bool { return f.State == session.StateSuccess })
	assert.Len(t, frame.Results, 1)
}

func TestWebSocket_RateLimitDelaysQueries(t *testing.T) {
	_, ts := newTestServer(t, newTestSearcher(t), WithRateLimit(1, 1))
	conn := dial(t, ts)
	readUntil(t, conn, func(ServerFrame) bool { return true })

	start := time.Now()
	queries := []string{"ext", "exten", "extension"}
	for _, query := range queries {
		require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameQuery, Query: query}))
	}

	// Every frame is applied, in order, none dropped
	seen := make(map[string]time.Duration)
	for _, query := range queries {
		readUntil(t, conn, func(f ServerFrame) bool { return f.Type == FrameSnapshot && f.Query == query })
		seen[query] = time.Since(start)
	}

	assert.Less(t, seen["ext"], 500*time.Millisecond)
	assert.GreaterOrEqual(t, seen["exten"], 800*time.Millisecond)
	assert.GreaterOrEqual(t, seen["extension"], 1800*time.Millisecond)

	frame := readUntil(t, conn, func(f ServerFrame) bool { return f.State == session.StateSuccess })
	assert.Equal(t, "extension", frame.Query)
	assert.Len(t, frame.Results, 1)
}

func TestWebSocket_SessionsAreIndependent(t *testing.T) {
	srv, ts := newTestServer(t, newTestSearcher(t))
	a := dial(t, ts)
	b := dial(t, ts)

	frameA := readUntil(t, a, func(ServerFrame) bool { return true })
	frameB := readUntil(t, b, func(ServerFrame) bool { return true })
	assert.NotEqual(t, frameA.Session, frameB.Session)
	assert.Eventually(t, func() bool { return srv.SessionCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.WriteJSON(ClientFrame{Type: FrameQuery, Query: "steel"}))
	readUntil(t, a, func(f ServerFrame) bool { return f.State == session.StateSuccess })

	require.NoError(t, b.WriteJSON(ClientFrame{Type: FrameHide}))
	frame := readUntil(t, b, func(f ServerFrame) bool { return f.Type == FrameSnapshot })
	assert.Equal(t, session.StateIdle, frame.State)
	assert.Empty(t, frame.Query)

	a.Close()
	assert.Eventually(t, func() bool { return srv.SessionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv, err := NewServer(newTestSearcher(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
