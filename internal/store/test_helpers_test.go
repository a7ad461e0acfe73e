package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestSQLite creates a new file-backed SQLite medium for testing.
func createTestSQLite(t *testing.T) *SQLMedium {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// runMediumContract exercises the behavior every Medium must share.
func runMediumContract(t *testing.T, m Medium) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := m.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "technologies", []byte(`[{"id":1}]`)))
		got, err := m.Get(ctx, "technologies")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":1}]`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "technologies", []byte(`[]`)))
		got, err := m.Get(ctx, "technologies")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("keys by prefix", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "technologies_backup_1700000000002", []byte(`[]`)))
		require.NoError(t, m.Set(ctx, "technologies_backup_1700000000001", []byte(`[]`)))
		require.NoError(t, m.Set(ctx, "technologiesXbackup_1", []byte(`[]`)))
		require.NoError(t, m.Set(ctx, "theme", []byte(`dark`)))

		keys, err := m.Keys(ctx, "technologies_backup_")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"technologies_backup_1700000000001",
			"technologies_backup_1700000000002",
		}, keys)
	})

	t.Run("keys none", func(t *testing.T) {
		keys, err := m.Keys(ctx, "nothing_")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, m.Remove(ctx, "theme"))
		_, err := m.Get(ctx, "theme")
		assert.ErrorIs(t, err, ErrNotFound)

		// Removing again is not an error.
		assert.NoError(t, m.Remove(ctx, "theme"))
	})
}
