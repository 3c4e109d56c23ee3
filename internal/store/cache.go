// Package store provides result caches for solver output: SQLite on disk,
// Redis for a shared daemon, and an in-memory map.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed result caching.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the results database path under cacheDir.
func DefaultPath(cacheDir string) string {
	return filepath.Join(cacheDir, "results.db")
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the entry stored under key and records the hit.
func (c *Cache) Get(key string) (Entry, bool, error) {
	var payload string
	err := c.db.QueryRow("SELECT payload FROM results WHERE cache_key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	var e Entry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		// A payload from an older layout is a miss, not a failure.
		return Entry{}, false, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := c.db.Exec("UPDATE results SET hits = hits + 1, last_hit_at = ? WHERE cache_key = ?", now, key); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Put stores e under key, replacing any previous entry.
func (c *Cache) Put(key string, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	_, err = c.db.Exec(`INSERT OR REPLACE INTO results (cache_key, kind, payload, created_at, hits)
		VALUES (?, ?, ?, ?, 0)`,
		key, e.Kind, string(payload), e.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Prune deletes entries created before cutoff and returns how many were removed.
func (c *Cache) Prune(cutoff time.Time) (int64, error) {
	res, err := c.db.Exec("DELETE FROM results WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear deletes every entry.
func (c *Cache) Clear() (int64, error) {
	res, err := c.db.Exec("DELETE FROM results")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats summarizes the cache contents.
func (c *Cache) Stats() (Stats, error) {
	rows, err := c.db.Query("SELECT kind, COUNT(*), COALESCE(SUM(hits), 0), MIN(created_at), MAX(created_at) FROM results GROUP BY kind")
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = rows.Close() }()

	var st Stats
	for rows.Next() {
		var kind string
		var count int
		var hits int64
		var oldest, newest sql.NullString
		if err := rows.Scan(&kind, &count, &hits, &oldest, &newest); err != nil {
			return Stats{}, err
		}

		st.Entries += count
		st.Hits += hits
		switch kind {
		case KindTerms:
			st.Terms += count
		case KindScenario:
			st.Scenarios += count
		}
		if oldest.Valid {
			if t, err := time.Parse(time.RFC3339, oldest.String); err == nil && (st.Oldest.IsZero() || t.Before(st.Oldest)) {
				st.Oldest = t
			}
		}
		if newest.Valid {
			if t, err := time.Parse(time.RFC3339, newest.String); err == nil && t.After(st.Newest) {
				st.Newest = t
			}
		}
	}
	return st, rows.Err()
}
