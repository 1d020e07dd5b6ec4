package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/soyeahso/agentchat/internal/logging"
)

// Well-known preference keys.
const (
	KeyClientID = "client_id"
	KeyTheme    = "theme"
)

// KV is a durable string key/value store for client preferences.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// SQLitePrefs implements KV on the preferences table.
type SQLitePrefs struct {
	db *DB
}

// NewSQLitePrefs creates a preference store using the given database.
func NewSQLitePrefs(db *DB) *SQLitePrefs {
	return &SQLitePrefs{db: db}
}

// Get returns the stored value for key.
func (p *SQLitePrefs) Get(key string) (string, bool, error) {
	var value string
	err := p.db.sql.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (p *SQLitePrefs) Set(key, value string) error {
	_, err := p.db.sql.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing preference %q: %w", key, err)
	}
	p.db.log.Debug().Str("key", key).Msg("preference saved")
	return nil
}

// Delete removes key.
func (p *SQLitePrefs) Delete(key string) error {
	if _, err := p.db.sql.Exec("DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}

// MemoryPrefs is a process-local KV, used when storage.driver is "memory".
type MemoryPrefs struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPrefs creates an empty in-memory preference store.
func NewMemoryPrefs() *MemoryPrefs {
	return &MemoryPrefs{values: make(map[string]string)}
}

func (m *MemoryPrefs) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryPrefs) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryPrefs) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenPrefs opens the preference store for a storage driver ("sqlite" or
// "memory"). The returned Closer releases the underlying database.
func OpenPrefs(driver, path string, log *logging.Logger) (KV, io.Closer, error) {
	switch driver {
	case "memory":
		return NewMemoryPrefs(), nopCloser{}, nil
	case "", "sqlite":
		db, err := Open(path, log)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLitePrefs(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
