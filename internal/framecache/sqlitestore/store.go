// Package sqlitestore persists encoded frames in a SQLite database so cached
// frames survive process restarts.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"countdown/internal/framecache"
)

// Store is a framecache.Store backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the frame database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	pragmas := []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"busy_timeout(5000)",
	}
	query := url.Values{}
	for _, pragma := range pragmas {
		query.Add("_pragma", pragma)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite db: %w", err)
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM frames WHERE key = ? AND expires_at > ?`,
		key, s.now().Unix(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("lookup frame: %w", err)
	}
	return count > 0, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM frames WHERE key = ? AND expires_at > ?`,
		key, s.now().Unix(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, framecache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return value, nil
}

func (s *Store) Save(ctx context.Context, entry framecache.Entry) error {
	if entry.Key == "" {
		return errors.New("save frame: empty key")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO frames (key, value, expires_at, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
             value = excluded.value,
             expires_at = excluded.expires_at,
             created_at = excluded.created_at`,
		entry.Key,
		entry.Value,
		entry.ExpiresAt.Unix(),
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	return nil
}

// Stats reports row counts and payload size.
func (s *Store) Stats(ctx context.Context) (framecache.Stats, error) {
	stats := framecache.Stats{Backend: "sqlite", Location: s.path}
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
                SUM(LENGTH(value))
         FROM frames`,
		s.now().Unix(),
	).Scan(&stats.Entries, &stats.Expired, &total)
	if err != nil {
		return stats, fmt.Errorf("frame stats: %w", err)
	}
	stats.TotalBytes = total.Int64
	return stats, nil
}

// Prune deletes rows expired at now.
func (s *Store) Prune(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM frames WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune frames: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}
