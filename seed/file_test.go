package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/claimdesk/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSeed = `
claims:
  - title: Steel Price Variation Claim
    description: Escalation of reinforcing steel prices
    status: submitted
    created_at: 2025-03-14T09:00:00Z
  - title: Extension of time
    status: draft
variations:
  - title: Additional drainage works
    status: under_review
`

func TestParse(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		file, err := Parse(strings.NewReader(validSeed))
		require.NoError(t, err)

		require.Len(t, file.Claims, 2)
		require.Len(t, file.Variations, 1)
		assert.Equal(t, 3, file.Len())

		first := file.Claims[0]
		assert.Equal(t, "Steel Price Variation Claim", first.Title)
		assert.Equal(t, core.StatusSubmitted, first.Status)
		assert.Equal(t, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), first.CreatedAt.UTC())
		assert.True(t, file.Claims[1].CreatedAt.IsZero())
	})

	t.Run("empty document", func(t *testing.T) {
		file, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, file.Len())
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(strings.NewReader("disputes:\n  - title: x\n"))
		assert.ErrorIs(t, err, ErrInvalidSeedFile)
	})

	t.Run("invalid status names the entry", func(t *testing.T) {
		_, err := Parse(strings.NewReader("variations:\n  - title: x\n  - title: y\n    status: pending\n"))
		assert.ErrorIs(t, err, ErrInvalidSeedFile)
		assert.ErrorIs(t, err, core.ErrInvalidStatus)
		assert.Contains(t, err.Error(), "variations[0]")
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := Parse(strings.NewReader("claims:\n  - title: '  '\n    status: draft\n"))
		assert.ErrorIs(t, err, core.ErrEmptyTitle)
	})
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSeed), 0o644))

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, file.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileRecords(t *testing.T) {
	file, err := Parse(strings.NewReader(validSeed))
	require.NoError(t, err)

	claims := file.Records(core.CollectionClaims)
	require.Len(t, claims, 2)
	assert.Zero(t, claims[0].Id)
	assert.Equal(t, "Escalation of reinforcing steel prices", claims[0].Description)

	// Each call builds new records
	claims[0].Title = "changed"
	assert.Equal(t, "Steel Price Variation Claim", file.Records(core.CollectionClaims)[0].Title)
}

func TestSamples(t *testing.T) {
	samples := Samples()
	require.NoError(t, samples.Validate())
	assert.Len(t, samples.Claims, len(SampleClaims()))
	assert.Len(t, samples.Variations, len(SampleVariations()))

	var found bool
	for _, claim := range SampleClaims() {
		require.NoError(t, core.ValidateRecord(claim))
		if claim.Title == "Steel Price Variation Claim" {
			found = true
		}
	}
	assert.True(t, found)
}
