package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
	badgerstore "github.com/poiesic/claimdesk/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *RecordRepository, *RecordRepository) {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "claimdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	claims, variations := store.Repositories()
	return store, claims, variations
}

func TestOpenStore(t *testing.T) {
	store, claims, variations := newTestStore(t)

	assert.False(t, store.IsClosed())
	assert.Equal(t, core.CollectionClaims, claims.Collection())
	assert.Equal(t, core.CollectionVariations, variations.Collection())

	require.NoError(t, store.Close())
	assert.True(t, store.IsClosed())
	// Closing twice is harmless
	require.NoError(t, store.Close())
}

func TestOpenStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "claimdesk.db")
	store, err := OpenStore(path)
	require.NoError(t, err)

	claims, _ := store.Repositories()
	added, err := claims.AddRecords(context.Background(), &core.Record{Title: "Persisted claim", Status: core.StatusDraft})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	claims, _ = store.Repositories()
	record, err := claims.GetRecord(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Persisted claim", record.Title)
}

func TestRecordLifecycle(t *testing.T) {
	_, claims, _ := newTestStore(t)
	ctx := context.Background()

	added, err := claims.AddRecords(ctx,
		&core.Record{Title: "Delay claim", Description: "Late site handover", Status: core.StatusSubmitted},
		&core.Record{Title: "Disruption claim", Status: core.StatusDraft},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].Id)
	assert.NotEqual(t, added[0].Id, added[1].Id)

	record, err := claims.GetRecord(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Late site handover", record.Description)
	assert.True(t, added[0].CreatedAt.Truncate(time.Microsecond).Equal(record.CreatedAt))

	added[0].Status = core.StatusApproved
	_, err = claims.UpdateRecords(ctx, added[0])
	require.NoError(t, err)

	record, err = claims.GetRecord(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusApproved, record.Status)

	require.NoError(t, claims.DeleteRecords(ctx, added[0].Id))
	_, err = claims.GetRecord(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, claims.DeleteRecords(ctx, added[0].Id), storage.ErrNotFound)

	_, err = claims.UpdateRecords(ctx, &core.Record{Id: 999, Title: "Ghost", Status: core.StatusDraft})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	records, err := claims.GetRecords(ctx, added[0].Id, added[1].Id)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Disruption claim", records[0].Title)
}

func TestGetRecentRecords(t *testing.T) {
	_, claims, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := claims.AddRecords(ctx,
		&core.Record{Title: "Oldest", Status: core.StatusDraft, CreatedAt: now.Add(-3 * time.Hour)},
		&core.Record{Title: "Newest", Status: core.StatusDraft, CreatedAt: now.Add(-1 * time.Hour)},
		&core.Record{Title: "Middle", Status: core.StatusDraft, CreatedAt: now.Add(-2 * time.Hour)},
	)
	require.NoError(t, err)

	recent, err := claims.GetRecentRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Newest", recent[0].Title)
	assert.Equal(t, "Middle", recent[1].Title)

	_, err = claims.GetRecentRecords(ctx, -1)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindMatching(t *testing.T) {
	_, claims, variations := newTestStore(t)
	ctx := context.Background()

	_, err := claims.AddRecords(ctx,
		&core.Record{Title: "Steel Price Variation Claim", Status: core.StatusSubmitted},
		&core.Record{Title: "Delay claim", Description: "Late delivery of STEEL beams", Status: core.StatusDraft},
		&core.Record{Title: "Retention release 50% due", Status: core.StatusDraft},
		&core.Record{Title: "Retention release 500 due", Status: core.StatusDraft},
	)
	require.NoError(t, err)

	t.Run("title or description, case-insensitive", func(t *testing.T) {
		results, err := claims.FindMatching(ctx, storage.NewPattern("Steel"), 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Steel Price Variation Claim", results[0].Title)
		assert.Equal(t, "Delay claim", results[1].Title)
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		results, err := claims.FindMatching(ctx, storage.NewPattern("50%"), 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Retention release 50% due", results[0].Title)
	})

	t.Run("other collection is separate", func(t *testing.T) {
		results, err := variations.FindMatching(ctx, storage.NewPattern("steel"), 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := claims.FindMatching(ctx, storage.NewPattern("steel"), 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestFindMatching_NonASCII(t *testing.T) {
	_, claims, _ := newTestStore(t)
	memClaims, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer memClaims.Close()

	ctx := context.Background()
	records := []*core.Record{
		{Title: "Études de Prix", Status: core.StatusSubmitted},
		{Title: "Steel claim", Description: "ÖFFENTLICHE Ausschreibung", Status: core.StatusDraft},
	}
	for _, repo := range []storage.RecordRepository{claims, memClaims} {
		for _, record := range records {
			copied := *record
			_, err := repo.AddRecords(ctx, &copied)
			require.NoError(t, err)
		}
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"études", []string{"Études de Prix"}},
		{"ÉTUDES", []string{"Études de Prix"}},
		{"Études", []string{"Études de Prix"}},
		{"öffentliche", []string{"Steel claim"}},
		{"prix", []string{"Études de Prix"}},
		{"etudes", nil},
	}

	titles := func(records []*core.Record) []string {
		var out []string
		for _, record := range records {
			out = append(out, record.Title)
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			pattern := storage.NewPattern(tt.query)

			got, err := claims.FindMatching(ctx, pattern, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))

			fromBadger, err := memClaims.FindMatching(ctx, pattern, 5)
			require.NoError(t, err)
			assert.Equal(t, titles(fromBadger), titles(got))
		})
	}
}

func TestFindMatching_Limit(t *testing.T) {
	_, claims, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := claims.AddRecords(ctx, &core.Record{Title: fmt.Sprintf("Steel claim %d", i), Status: core.StatusSubmitted})
		require.NoError(t, err)
	}

	results, err := claims.FindMatching(ctx, storage.NewPattern("steel"), 5)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, "Steel claim 0", results[0].Title)
	assert.Equal(t, "Steel claim 4", results[4].Title)
}

func TestClosedStore(t *testing.T) {
	store, claims, _ := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := claims.FindMatching(context.Background(), storage.NewPattern("steel"), 5)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = claims.AddRecords(context.Background(), &core.Record{Title: "Late", Status: core.StatusDraft})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
