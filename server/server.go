package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/poiesic/claimdesk/session"
	"golang.org/x/time/rate"
)

const (
	// DefaultQueriesPerSecond is the sustained query rate allowed per connection.
	DefaultQueriesPerSecond = 10
	// DefaultBurst is the number of queries a connection may send at once.
	DefaultBurst = 5

	writeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves search requests and live search sessions.
type Server struct {
	querier  session.Querier
	logger   *slog.Logger
	debounce time.Duration
	qps      rate.Limit
	burst    int
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDebounce sets the debounce delay of websocket sessions.
// Default is session.DefaultDebounce.
func WithDebounce(delay time.Duration) Option {
	return func(s *Server) error {
		if delay < 0 {
			return session.ErrInvalidDebounce
		}
		s.debounce = delay
		return nil
	}
}

// WithRateLimit sets the per-connection query rate.
func WithRateLimit(queriesPerSecond float64, burst int) Option {
	return func(s *Server) error {
		if queriesPerSecond <= 0 || burst <= 0 {
			return ErrInvalidRateLimit
		}
		s.qps = rate.Limit(queriesPerSecond)
		s.burst = burst
		return nil
	}
}

// WithOriginCheck sets the websocket origin policy.
// Default accepts every origin.
func WithOriginCheck(check func(r *http.Request) bool) Option {
	return func(s *Server) error {
		s.upgrader.CheckOrigin = check
		return nil
	}
}

// NewServer creates a server answering queries with querier.
func NewServer(querier session.Querier, opts ...Option) (*Server, error) {
	if querier == nil {
		return nil, ErrQuerierRequired
	}

	s := &Server{
		querier:  querier,
		logger:   slog.Default(),
		debounce: session.DefaultDebounce,
		qps:      DefaultQueriesPerSecond,
		burst:    DefaultBurst,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and closes every live session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("search server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down search server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by http.Server
	s.closeClients()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("search server stopped")
	return nil
}

// SessionCount returns the number of live websocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	outcome := s.querier.Search(r.Context(), query)
	if outcome.Failed() {
		s.logger.Warn("search failed", "query", query, "err", outcome.Err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(newSearchResponse(outcome)); err != nil {
		s.logger.Error("error writing search response", "err", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade error", "err", err)
		return
	}

	id := uuid.NewString()
	logger := s.logger.With("session", id)

	ctrl, err := session.NewController(s.querier,
		session.WithDebounce(s.debounce),
		session.WithLogger(logger),
	)
	if err != nil {
		logger.Error("error creating session", "err", err)
		conn.Close()
		return
	}

	c := &client{
		id:      id,
		conn:    conn,
		ctrl:    ctrl,
		limiter: rate.NewLimiter(s.qps, s.burst),
		logger:  logger,
	}

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		c.close()
	}()

	logger.Info("websocket session opened", "remote", r.RemoteAddr)
	c.serve(r.Context())
	logger.Info("websocket session closed")
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
