package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))

	return NewSQLiteStore(db)
}

func TestSQLiteStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Put("spotify_access_token", "tok123", time.Hour))

		value, ok := s.Get("spotify_access_token")
		assert.True(t, ok)
		assert.Equal(t, "tok123", value)
	})

	t.Run("missing key", func(t *testing.T) {
		s := newTestStore(t)

		_, ok := s.Get("absent")
		assert.False(t, ok)
	})

	t.Run("overwrite replaces value", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Put("key", "first", time.Hour))
		require.NoError(t, s.Put("key", "second", time.Hour))

		value, ok := s.Get("key")
		assert.True(t, ok)
		assert.Equal(t, "second", value)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Put("key", "value", 0))

		s.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }

		value, ok := s.Get("key")
		assert.True(t, ok)
		assert.Equal(t, "value", value)
	})

	t.Run("expired key reads as absent", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Put("nonce", "1", 10*time.Minute))

		s.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

		_, ok := s.Get("nonce")
		assert.False(t, ok)

		// Lazy deletion removes the row, so the key stays absent even after
		// the clock moves back.
		s.now = time.Now
		_, ok = s.Get("nonce")
		assert.False(t, ok)
	})

	t.Run("forget removes key", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Put("key", "value", time.Hour))
		require.NoError(t, s.Forget("key"))

		_, ok := s.Get("key")
		assert.False(t, ok)
	})

	t.Run("forget absent key is not an error", func(t *testing.T) {
		s := newTestStore(t)
		assert.NoError(t, s.Forget("absent"))
	})
}

func TestMigrate(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, Migrate(db))
	})

	t.Run("records applied versions", func(t *testing.T) {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestRollback(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Rollback(db))

	t.Run("drops the credentials table", func(t *testing.T) {
		_, err := db.Exec("SELECT 1 FROM credentials")
		assert.Error(t, err)
	})

	t.Run("removes the migration record", func(t *testing.T) {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("fails with nothing applied", func(t *testing.T) {
		assert.Error(t, Rollback(db))
	})

	t.Run("migrate reapplies after rollback", func(t *testing.T) {
		require.NoError(t, Migrate(db))
		s := NewSQLiteStore(db)
		require.NoError(t, s.Put("key", "value", 0))
	})
}
