// Package store caches rendered dictionary articles in SQLite so repeated
// lookups skip the remote round trip.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/wikidict/dbopen"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	dict_id    TEXT NOT NULL,
	word       TEXT NOT NULL,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (dict_id, word)
);
`

// DefaultTTL is how long a cached article stays fresh.
const DefaultTTL = 24 * time.Hour

// Store is a TTL-bounded article cache. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	log *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// Open opens or creates the cache database at path.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("open article cache: %w", err)
	}
	return newStore(db, ttl, logger), nil
}

// NewWithDB wraps an already-open database. The caller retains ownership
// of db's schema; Store assumes the articles table exists.
func NewWithDB(db *sql.DB, ttl time.Duration, logger *slog.Logger) *Store {
	return newStore(db, ttl, logger)
}

func newStore(db *sql.DB, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, ttl: ttl, log: logger, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the cached body for (dictID, word), or ok=false on a miss
// or an expired entry.
func (s *Store) Get(ctx context.Context, dictID, word string) ([]byte, bool, error) {
	var body []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM articles WHERE dict_id = ? AND word = ?`,
		dictID, word).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if s.now().Unix()-fetchedAt > int64(s.ttl.Seconds()) {
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores body for (dictID, word), replacing any previous entry.
func (s *Store) Put(ctx context.Context, dictID, word string, body []byte) error {
	_, err := dbopen.Exec(ctx, s.db,
		`INSERT INTO articles (dict_id, word, body, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (dict_id, word) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		dictID, word, body, s.now().Unix())
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	res, err := dbopen.Exec(ctx, s.db,
		`DELETE FROM articles WHERE fetched_at < ?`, s.now().Unix()-int64(s.ttl.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug("cache: pruned", "entries", n)
	}
	return n, nil
}
