package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrMiss means the entity has never been cached.
var ErrMiss = errors.New("cache miss")

// Cache mirrors the last successfully fetched list per entity in a local
// SQLite file, so the dashboard can render instantly and offline. It is
// refreshed after every successful list call and purged on logout.
type Cache struct {
	db *sql.DB
}

const migrationLists = `
CREATE TABLE IF NOT EXISTS lists (
    entity TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
`

// Open opens or creates the cache database at the given path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	if _, err := db.Exec(migrationLists); err != nil {
		return nil, fmt.Errorf("cache migration failed: %w", err)
	}

	return &Cache{db: db}, nil
}

// OpenDefault opens the cache at ~/.folio/cache.db.
func OpenDefault() (*Cache, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(home, ".folio", "cache.db"))
}

// SaveList stores a fetched list for an entity.
func (c *Cache) SaveList(entity string, payload []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO lists (entity, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(entity) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		entity, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadList returns the cached list payload and fetch time for an entity.
func (c *Cache) LoadList(entity string) ([]byte, time.Time, error) {
	var payload, fetchedAt string
	err := c.db.QueryRow(`SELECT payload, fetched_at FROM lists WHERE entity = ?`, entity).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrMiss
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	at, _ := time.Parse(time.RFC3339, fetchedAt)
	return []byte(payload), at, nil
}

// Purge drops all cached content. Called on logout.
func (c *Cache) Purge() error {
	_, err := c.db.Exec(`DELETE FROM lists`)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveItems marshals and stores a typed list.
func SaveItems[T any](c *Cache, entity string, items []T) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.SaveList(entity, payload)
}

// LoadItems loads and unmarshals a typed list.
func LoadItems[T any](c *Cache, entity string) ([]T, time.Time, error) {
	payload, at, err := c.LoadList(entity)
	if err != nil {
		return nil, time.Time{}, err
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, time.Time{}, err
	}
	return items, at, nil
}
