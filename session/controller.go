package session

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
)

// DefaultDebounce is how long the controller waits after the last keystroke
// before searching.
const DefaultDebounce = 300 * time.Millisecond

// Querier runs one search. *search.Searcher satisfies it.
type Querier interface {
	Search(ctx context.Context, query string) search.Outcome
}

// Listener receives snapshots from a controller.
type Listener func(Snapshot)

// Controller is the state machine behind one search box.
type Controller struct {
	querier  Querier
	debounce time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	query      string
	state      State
	outcome    search.Status
	results    []core.SearchResult
	err        error
	visible    bool
	version    uint64
	closed     bool
	timer      *time.Timer
	timerSeq   uint64
	generation uint64
	inflight   context.CancelFunc

	listeners    map[uint64]Listener
	nextListener uint64
	pending      []Snapshot
	flushing     bool
}

// Option configures a Controller.
type Option func(*Controller) error

// WithDebounce sets the delay between the last keystroke and the search.
// Default is DefaultDebounce.
func WithDebounce(delay time.Duration) Option {
	return func(c *Controller) error {
		if delay < 0 {
			return ErrInvalidDebounce
		}
		c.debounce = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewController creates an idle controller with the results panel visible.
func NewController(querier Querier, opts ...Option) (*Controller, error) {
	if querier == nil {
		return nil, ErrQuerierRequired
	}

	c := &Controller{
		querier:   querier,
		debounce:  DefaultDebounce,
		logger:    slog.Default(),
		state:     StateIdle,
		visible:   true,
		listeners: make(map[uint64]Listener),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

// Subscribe registers a listener for every future transition.
// The returned function removes it.
func (c *Controller) Subscribe(listener Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetQuery records the text in the search box and restarts the debounce
// timer. Typing also reopens a hidden results panel.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.query = text
	c.visible = true
	c.stopTimerLocked()
	c.timerSeq++
	seq := c.timerSeq
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(seq) })

	c.publishLocked()
	c.mu.Unlock()
	c.flush()
}

// Hide closes the results panel, as when the user clicks outside the box.
func (c *Controller) Hide() {
	c.setVisible(false)
}

// Show reopens the results panel.
func (c *Controller) Show() {
	c.setVisible(true)
}

// Close stops the debounce timer and cancels any in-flight search.
// Later calls to SetQuery, Hide and Show do nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.inflight = nil
	c.mu.Unlock()

	c.cancel()
}

func (c *Controller) setVisible(visible bool) {
	c.mu.Lock()
	if c.closed || c.visible == visible {
		c.mu.Unlock()
		return
	}
	c.visible = visible
	c.publishLocked()
	c.mu.Unlock()
	c.flush()
}

// fire runs when the debounce timer for seq expires.
func (c *Controller) fire(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.timerSeq {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	// Supersede whatever is in flight
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.generation++
	generation := c.generation
	query := c.query

	if strings.TrimSpace(query) == "" {
		c.state = StateIdle
		c.outcome = ""
		c.results = nil
		c.err = nil
		c.publishLocked()
		c.mu.Unlock()
		c.flush()
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.state = StateLoading
	c.err = nil
	c.publishLocked()
	c.mu.Unlock()
	c.flush()

	go c.run(ctx, cancel, generation, query)
}

// run performs one search and applies its outcome if it is still current.
func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, generation uint64, query string) {
	defer cancel()

	outcome := c.querier.Search(ctx, query)

	c.mu.Lock()
	if c.closed || generation != c.generation {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded search response", "query", query, "generation", generation)
		return
	}
	c.inflight = nil

	c.outcome = outcome.Status
	c.err = outcome.Err
	if outcome.Failed() {
		c.state = StateError
		c.results = nil
	} else {
		c.state = StateSuccess
		c.results = outcome.Results
	}
	c.publishLocked()
	c.mu.Unlock()
	c.flush()
}

// stopTimerLocked stops the pending debounce timer. Must be called with lock held.
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// snapshotLocked copies the current state. Must be called with lock held.
func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version: c.version,
		Query:   c.query,
		State:   c.state,
		Outcome: c.outcome,
		Results: slices.Clone(c.results),
		Err:     c.err,
		Visible: c.visible,
	}
}

// publishLocked queues a snapshot of a new transition. Must be called with lock held.
func (c *Controller) publishLocked() {
	c.version++
	c.pending = append(c.pending, c.snapshotLocked())
}

// flush delivers queued snapshots in order. Only one goroutine drains the
// queue at a time; others return at once and leave their snapshots to it.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true

	for len(c.pending) > 0 {
		snapshot := c.pending[0]
		c.pending = c.pending[1:]
		listeners := make([]Listener, 0, len(c.listeners))
		for _, id := range slices.Sorted(maps.Keys(c.listeners)) {
			listeners = append(listeners, c.listeners[id])
		}
		c.mu.Unlock()

		for _, listener := range listeners {
			listener(snapshot)
		}

		c.mu.Lock()
	}

	c.flushing = false
	c.mu.Unlock()
}
