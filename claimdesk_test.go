package claimdesk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/claimdesk/config"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
	"github.com/poiesic/claimdesk/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new badger database", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(dir)
		require.NoError(t, err)
		defer db.Close()

		assert.NotNil(t, db.Claims())
		assert.NotNil(t, db.Variations())
		assert.Equal(t, core.CollectionClaims, db.Claims().Collection())
		assert.Equal(t, core.CollectionVariations, db.Variations().Collection())
		assert.Equal(t, dir, db.Config().Storage.Path)
	})

	t.Run("create new sqlite database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "records.db")
		db, err := NewDatabase(path, WithConfig(config.NewConfig(config.WithBackend(config.BackendSQLite))))
		require.NoError(t, err)
		defer db.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("in memory", func(t *testing.T) {
		db, err := NewDatabase("", InMemory(), WithLogger(nil), WithConfig(nil))
		require.NoError(t, err)
		assert.NoError(t, db.Close())
	})

	t.Run("sqlite has no in-memory mode", func(t *testing.T) {
		_, err := NewDatabase("", InMemory(), WithConfig(config.NewConfig(config.WithBackend(config.BackendSQLite))))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		_, err := NewDatabase("", WithConfig(config.NewConfig(config.WithBackend("postgres"))))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("does not modify the caller's config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		db, err := NewDatabase(filepath.Join(t.TempDir(), "db"), WithConfig(cfg))
		require.NoError(t, err)
		defer db.Close()
		assert.Equal(t, "claimdesk.db", cfg.Storage.Path)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	for _, backend := range []string{config.BackendBadger, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.NewConfig(config.WithBackend(backend), config.WithCacheTTL(time.Minute))
			db, err := NewDatabase(filepath.Join(t.TempDir(), "records"), WithConfig(cfg))
			require.NoError(t, err)
			defer db.Close()

			ctx := context.Background()
			importer, err := db.NewImporter()
			require.NoError(t, err)
			_, err = importer.Seed(ctx)
			require.NoError(t, err)

			searcher, err := db.NewSearcher()
			require.NoError(t, err)
			defer searcher.Release()
			assert.Equal(t, 5, searcher.Limit())

			outcome := searcher.Search(ctx, "steel")
			require.Equal(t, search.StatusSuccess, outcome.Status)
			require.Len(t, outcome.Results, 2)
			assert.Equal(t, "Steel Price Variation Claim", outcome.Results[0].Title)
			assert.Equal(t, core.ResultTypeClaim, outcome.Results[0].Type)
			assert.Equal(t, "Steel Grade Substitution", outcome.Results[1].Title)
			assert.Equal(t, core.ResultTypeVariation, outcome.Results[1].Type)

			assert.Empty(t, searcher.GlobalSearch(ctx, "   "))
		})
	}
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", InMemory())
	require.NoError(t, err)
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithLimit(2))
	require.NoError(t, err)
	defer searcher.Release()
	assert.Equal(t, 2, searcher.Limit())

	ctrl, err := db.NewController(searcher, session.WithDebounce(time.Millisecond))
	require.NoError(t, err)
	ctrl.Close()

	srv, err := db.NewServer(searcher)
	require.NoError(t, err)
	assert.NotNil(t, srv.Handler())
}

func TestDatabase_Repository(t *testing.T) {
	db, err := NewDatabase("", InMemory())
	require.NoError(t, err)
	defer db.Close()

	claims, err := db.Repository(core.CollectionClaims)
	require.NoError(t, err)
	assert.Equal(t, db.Claims(), claims)

	variations, err := db.Repository(core.CollectionVariations)
	require.NoError(t, err)
	assert.Equal(t, db.Variations(), variations)

	_, err = db.Repository("disputes")
	assert.ErrorIs(t, err, core.ErrUnknownCollection)
}
