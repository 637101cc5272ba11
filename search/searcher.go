package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// DefaultLimit is the number of rows read from each collection per query.
const DefaultLimit = 5

// Searcher runs global searches over the claims and variations collections.
type Searcher struct {
	claims     storage.RecordRepository
	variations storage.RecordRepository
	pool       *ants.Pool
	limit      int
	partial    bool
	cache      *resultCache
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithLimit sets the maximum number of rows read from each collection.
// Default is DefaultLimit.
func WithLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit <= 0 {
			return ErrInvalidLimit
		}
		s.limit = limit
		return nil
	}
}

// WithPoolSize sets the number of workers shared by collection reads.
// Default is runtime.NumCPU(), with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 2 {
			size = 2
		}

		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithPartialResults controls what happens when exactly one collection
// read fails. When false (the default) the whole search fails and no
// results are returned. When true the other collection's results are
// returned with StatusPartial.
func WithPartialResults(enabled bool) Option {
	return func(s *Searcher) error {
		s.partial = enabled
		return nil
	}
}

// WithCache memoizes successful searches for ttl. A ttl of 0 disables caching.
func WithCache(ttl time.Duration) Option {
	return func(s *Searcher) error {
		if ttl <= 0 {
			s.cache = nil
			return nil
		}
		s.cache = newResultCache(ttl)
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(claims, variations storage.RecordRepository, opts ...Option) (*Searcher, error) {
	if claims == nil {
		return nil, ErrClaimsRepositoryRequired
	}
	if variations == nil {
		return nil, ErrVariationsRepositoryRequired
	}

	s := &Searcher{
		claims:     claims,
		variations: variations,
		limit:      DefaultLimit,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	if s.pool == nil {
		poolSize := runtime.NumCPU()
		if poolSize < 2 {
			poolSize = 2
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	return s, nil
}

// Release releases the worker pool.
// The searcher should not be used after calling Release.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// ClearCache drops memoized results, if caching is enabled.
// Call it after records are written.
func (s *Searcher) ClearCache() {
	if s.cache != nil {
		s.cache.flush()
	}
}

// Limit returns the per-collection row limit.
func (s *Searcher) Limit() int {
	return s.limit
}

// GlobalSearch returns the merged, ranked matches for query.
// It never fails: read errors are logged and reported as no results.
// Use Search to distinguish "no matches" from "search failed".
func (s *Searcher) GlobalSearch(ctx context.Context, query string) []core.SearchResult {
	outcome := s.Search(ctx, query)
	if outcome.Status == StatusError {
		return []core.SearchResult{}
	}
	return outcome.Results
}

// Search runs a global search and returns a tagged outcome.
func (s *Searcher) Search(ctx context.Context, query string) Outcome {
	return s.SearchWithMonitor(ctx, query, nil)
}

// fetch is the result of reading one collection.
type fetch struct {
	collection core.Collection
	records    []*core.Record
	err        error
}

// SearchWithMonitor runs a global search with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, monitor SearchMonitor) Outcome {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	pattern, ok := NormalizeQuery(query)
	if !ok {
		return Outcome{Query: query, Status: StatusEmpty, Results: []core.SearchResult{}}
	}

	monitor.Start(query)

	if s.cache != nil {
		if results, found := s.cache.get(pattern); found {
			monitor.CacheHit(query)
			outcome := Outcome{Query: query, Status: statusFor(results), Results: results}
			monitor.Finish(outcome)
			return outcome
		}
	}

	// 1. Read both collections concurrently
	fetches := s.fetchAll(ctx, pattern)

	// 2. Merge in collection order, claims first
	results := make([]core.SearchResult, 0, 2*s.limit)
	var failures []error
	for _, f := range fetches {
		monitor.AfterFetch(f.collection, f.records, f.err)
		if f.err != nil {
			s.logger.Error("error reading collection for search", "collection", f.collection, "query", query, "err", f.err)
			failures = append(failures, fmt.Errorf("%w: %s: %w", ErrSearchFailed, f.collection, f.err))
			continue
		}
		results = Merge(results, f.collection, f.records)
	}

	if len(failures) > 0 && (!s.partial || len(failures) == len(fetches)) {
		outcome := Outcome{
			Query:   query,
			Status:  StatusError,
			Results: []core.SearchResult{},
			Err:     errors.Join(failures...),
		}
		monitor.Finish(outcome)
		return outcome
	}
	monitor.AfterMerge(results)

	// 3. Rank
	Rank(results, query)

	outcome := Outcome{Query: query, Status: statusFor(results), Results: results}
	if len(failures) > 0 {
		outcome.Status = StatusPartial
		outcome.Err = errors.Join(failures...)
	} else if s.cache != nil {
		s.cache.set(pattern, results)
	}

	monitor.Finish(outcome)
	return outcome
}

// fetchAll reads every collection on the worker pool and waits for all reads.
func (s *Searcher) fetchAll(ctx context.Context, pattern storage.Pattern) []fetch {
	repos := []storage.RecordRepository{s.claims, s.variations}
	fetches := make([]fetch, len(repos))

	var wg sync.WaitGroup
	for i, repo := range repos {
		fetches[i].collection = repo.Collection()
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			fetches[i].records, fetches[i].err = repo.FindMatching(ctx, pattern, s.limit)
		})
		if err != nil {
			wg.Done()
			fetches[i].err = err
		}
	}
	wg.Wait()

	return fetches
}

func statusFor(results []core.SearchResult) Status {
	if len(results) == 0 {
		return StatusEmpty
	}
	return StatusSuccess
}
