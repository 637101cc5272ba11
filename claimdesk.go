// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package claimdesk

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/claimdesk/config"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
	"github.com/poiesic/claimdesk/seed"
	"github.com/poiesic/claimdesk/server"
	"github.com/poiesic/claimdesk/session"
	"github.com/poiesic/claimdesk/storage"
	"github.com/poiesic/claimdesk/storage/badger"
	"github.com/poiesic/claimdesk/storage/sqlite"
)

// Database is an open claims and variations store.
type Database struct {
	claims     storage.RecordRepository
	variations storage.RecordRepository
	closeStore func() error
	config     *config.Config
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	config   *config.Config
	logger   *slog.Logger
	inMemory bool
}

// WithConfig sets the configuration. The storage section selects the backend.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.config = cfg
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// InMemory keeps all records in memory. Only the badger backend supports it.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath with the configured backend.
// filePath overrides the configured storage path unless it is empty.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.DefaultConfig()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	cfg := *options.config
	if filePath != "" {
		cfg.Storage.Path = filePath
	}
	if options.inMemory && cfg.Storage.Path == "" {
		// Path is unused in memory but required by validation
		cfg.Storage.Path = ":memory:"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := &Database{
		config: &cfg,
		logger: options.logger,
	}

	switch cfg.Storage.Backend {
	case config.BackendBadger:
		if err := db.openBadger(cfg.Storage.Path, options.inMemory); err != nil {
			return nil, err
		}
	case config.BackendSQLite:
		if options.inMemory {
			return nil, fmt.Errorf("%w: the sqlite backend has no in-memory mode", config.ErrInvalidConfig)
		}
		if err := db.openSQLite(cfg.Storage.Path); err != nil {
			return nil, err
		}
	}

	db.logger.Debug("database opened", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	return db, nil
}

func (db *Database) openBadger(path string, inMemory bool) error {
	backend, err := badger.OpenBackend(path, inMemory)
	if err != nil {
		return err
	}

	claims, variations, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return err
	}

	db.claims = claims
	db.variations = variations
	db.closeStore = backend.Close
	return nil
}

func (db *Database) openSQLite(path string) error {
	store, err := sqlite.OpenStore(path)
	if err != nil {
		return err
	}

	claims, variations := store.Repositories()
	db.claims = claims
	db.variations = variations
	db.closeStore = store.Close
	return nil
}

// Close releases the repositories and closes the backend.
func (db *Database) Close() error {
	var errs []error
	if err := db.variations.Close(); err != nil {
		db.logger.Error("error closing variations repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.claims.Close(); err != nil {
		db.logger.Error("error closing claims repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.closeStore(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Config returns the configuration the database was opened with.
func (db *Database) Config() *config.Config {
	return db.config
}

// Claims returns the claims repository.
func (db *Database) Claims() storage.RecordRepository {
	return db.claims
}

// Variations returns the variations repository.
func (db *Database) Variations() storage.RecordRepository {
	return db.variations
}

// Repository returns the repository holding collection.
func (db *Database) Repository(collection core.Collection) (storage.RecordRepository, error) {
	switch collection {
	case core.CollectionClaims:
		return db.claims, nil
	case core.CollectionVariations:
		return db.variations, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownCollection, collection)
}

// NewSearcher creates a searcher over both collections. The search section
// of the configuration is applied first, then opts.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	searchCfg := db.config.Search
	base := []search.Option{
		search.WithLogger(db.logger),
		search.WithLimit(searchCfg.Limit),
		search.WithPartialResults(searchCfg.PartialResults),
		search.WithCache(searchCfg.CacheTTL),
	}
	if searchCfg.PoolSize > 0 {
		base = append(base, search.WithPoolSize(searchCfg.PoolSize))
	}
	return search.NewSearcher(db.claims, db.variations, append(base, opts...)...)
}

// NewController creates a search box controller with the configured debounce.
func (db *Database) NewController(querier session.Querier, opts ...session.Option) (*session.Controller, error) {
	base := []session.Option{
		session.WithLogger(db.logger),
		session.WithDebounce(db.config.Search.Debounce),
	}
	return session.NewController(querier, append(base, opts...)...)
}

// NewServer creates a search server with the configured debounce and rate limit.
func (db *Database) NewServer(querier session.Querier, opts ...server.Option) (*server.Server, error) {
	base := []server.Option{
		server.WithLogger(db.logger),
		server.WithDebounce(db.config.Search.Debounce),
		server.WithRateLimit(db.config.Server.QueriesPerSecond, db.config.Server.Burst),
	}
	return server.NewServer(querier, append(base, opts...)...)
}

// NewImporter creates a seed importer writing into both collections.
func (db *Database) NewImporter(opts ...seed.ImporterOption) (*seed.Importer, error) {
	base := []seed.ImporterOption{seed.WithLogger(db.logger)}
	return seed.NewImporter(db.claims, db.variations, append(base, opts...)...)
}
