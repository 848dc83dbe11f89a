// Package store provides the namespaced key/value store that backs the
// persisted working set. All engine-owned keys live under the "afm."
// prefix; keys outside the namespace belong to other tenants of the
// database and are never touched by backup, restore or reset.
package store

import (
	"context"
	"database/sql"
	"strings"
)

// Namespace is the reserved key prefix for all engine-owned state.
const Namespace = "afm."

// IsNamespaced reports whether key belongs to the reserved namespace.
func IsNamespaced(key string) bool {
	return strings.HasPrefix(key, Namespace)
}

type Store interface {
	// Get returns the raw serialized value for key. The second return is
	// false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys enumerates every key currently present, namespaced or not.
	Keys(ctx context.Context) ([]string, error)
}

type SQLiteStore struct {
	db       *sql.DB
	counters *Counters
}

func New(db *sql.DB, counters *Counters) *SQLiteStore {
	return &SQLiteStore{db: db, counters: counters}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err == nil && s.counters != nil {
		s.counters.CountWrite(key)
	}
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	if err == nil && s.counters != nil {
		s.counters.CountRemove(key)
	}
	return err
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
