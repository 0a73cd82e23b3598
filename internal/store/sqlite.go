package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Configure sets connection pool settings for the database.
func Configure(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

// SQLiteStore implements [Store] on a single credentials table.
//
// Concurrent writers are not coordinated beyond SQLite's own locking; the
// last writer wins, which is sufficient for the benign race where two
// processes refresh a token at the same time.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a SQLiteStore on an open database connection.
// The connection must have had migrations applied via [Migrate].
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Get returns the stored value for key. Expired rows read as absent and are
// deleted lazily.
func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	var expiresAt sql.NullInt64

	err := s.db.QueryRow("SELECT value, expires_at FROM credentials WHERE key = ?", key).Scan(&value, &expiresAt)
	if err != nil {
		return "", false
	}

	if expiresAt.Valid && s.now().Unix() >= expiresAt.Int64 {
		s.db.Exec("DELETE FROM credentials WHERE key = ?", key)
		return "", false
	}

	return value, true
}

// Put upserts key with the given value and optional expiry.
func (s *SQLiteStore) Put(key, value string, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.now().Add(ttl).Unix(), Valid: true}
	}

	_, err := s.db.Exec(
		"INSERT INTO credentials (key, value, expires_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at",
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

// Forget removes key from the store.
func (s *SQLiteStore) Forget(key string) error {
	if _, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to forget %s: %w", key, err)
	}
	return nil
}
