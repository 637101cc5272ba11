package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"

	sqlitedriver "modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode-aware lower-casing function.
// The builtin lower() only folds ASCII, which would disagree with the
// needle produced by storage.NewPattern.
const foldFunc = "claimdesk_lower"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Store owns the SQLite database holding the claims and variations tables.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// OpenStore opens (or creates) a SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "sqlite"),
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// init creates the collection tables if they don't exist
func (s *Store) init() error {
	for _, collection := range core.Collections {
		table := string(collection)
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS ` + table + ` (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				title        TEXT NOT NULL,
				description  TEXT NOT NULL DEFAULT '',
				status       TEXT NOT NULL,
				created_at   INTEGER NOT NULL,
				updated_at   INTEGER NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_` + table + `_created ON ` + table + `(created_at);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// IsClosed returns true if the database is closed.
func (s *Store) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Repositories returns the claims and variations repositories backed by this store.
func (s *Store) Repositories() (*RecordRepository, *RecordRepository) {
	return &RecordRepository{store: s, collection: core.CollectionClaims, table: string(core.CollectionClaims)},
		&RecordRepository{store: s, collection: core.CollectionVariations, table: string(core.CollectionVariations)}
}

// read runs fn under the read lock, failing if the store is closed.
func (s *Store) read(fn func(db *sql.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	return fn(s.db)
}

// write runs fn inside a transaction under the write lock.
// The transaction is rolled back if fn returns an error.
func (s *Store) write(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("error rolling back transaction", "err", rbErr)
		}
		return err
	}
	return tx.Commit()
}
