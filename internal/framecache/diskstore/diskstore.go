// Package diskstore keeps one file per cached frame under a directory.
//
// Each file holds an 8-byte big-endian expiry (unix seconds) followed by the
// encoded frame. Files are written through a temp file and renamed into
// place, so a reader sees either the previous frame or the new one.
package diskstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"countdown/internal/fileutil"
	"countdown/internal/framecache"
)

const (
	headerSize = 8
	fileSuffix = ".frame"
	lockName   = ".prune.lock"
)

// Store is a framecache.Store backed by the filesystem.
type Store struct {
	dir    string
	now    func() time.Time
	statfs func(path string) (free, total uint64, err error)
}

// Open prepares dir for use as a frame store.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("disk cache path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create disk cache dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now, statfs: realStatfs}, nil
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	expiresAt, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return expiresAt.After(s.now()), nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, framecache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("read frame %s: truncated header", key)
	}
	if !decodeExpiry(data[:headerSize]).After(s.now()) {
		return nil, framecache.ErrNotFound
	}
	return data[headerSize:], nil
}

func (s *Store) Save(_ context.Context, entry framecache.Entry) error {
	path, err := s.pathFor(entry.Key)
	if err != nil {
		return err
	}
	buf := make([]byte, headerSize+len(entry.Value))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(entry.ExpiresAt.Unix()))
	copy(buf[headerSize:], entry.Value)
	if err := fileutil.WriteFileAtomic(path, buf, 0o644); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	return nil
}

// Stats walks the store and reports usage plus filesystem capacity.
func (s *Store) Stats(ctx context.Context) (framecache.Stats, error) {
	stats := framecache.Stats{Backend: "disk", Location: s.dir}
	now := s.now()
	err := s.walk(ctx, func(path string, size int64, expiresAt time.Time) error {
		stats.Entries++
		stats.TotalBytes += size
		if !expiresAt.After(now) {
			stats.Expired++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if s.statfs != nil {
		free, total, err := s.statfs(s.dir)
		if err != nil {
			return stats, fmt.Errorf("statfs %s: %w", s.dir, err)
		}
		stats.FreeBytes = free
		stats.TotalFSBytes = total
	}
	return stats, nil
}

// Prune removes frames expired at now. Concurrent prunes are serialized with
// a lock file in the store root; writers are not blocked.
func (s *Store) Prune(ctx context.Context, now time.Time) (int, error) {
	lock := flock.New(filepath.Join(s.dir, lockName))
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return 0, fmt.Errorf("acquire prune lock: %w", err)
	}
	if !locked {
		return 0, errors.New("acquire prune lock: already held")
	}
	defer func() { _ = lock.Unlock() }()

	removed := 0
	err = s.walk(ctx, func(path string, _ int64, expiresAt time.Time) error {
		if expiresAt.After(now) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
		return nil
	})
	return removed, err
}

func (s *Store) walk(ctx context.Context, fn func(path string, size int64, expiresAt time.Time) error) error {
	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		expiresAt, headerErr := readHeader(f)
		_ = f.Close()
		if headerErr != nil {
			// Unreadable frames are treated as expired.
			expiresAt = time.Time{}
		}
		return fn(path, max(0, info.Size()-headerSize), expiresAt)
	})
}

func (s *Store) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid frame key %q", key)
	}
	shard := key
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(s.dir, shard, key+fileSuffix), nil
}

func readHeader(r io.Reader) (time.Time, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return time.Time{}, fmt.Errorf("read frame header: %w", err)
	}
	return decodeExpiry(header[:]), nil
}

func decodeExpiry(b []byte) time.Time {
	return time.Unix(int64(binary.BigEndian.Uint64(b)), 0)
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	free := stat.Bavail * uint64(stat.Bsize)
	total := stat.Blocks * uint64(stat.Bsize)
	return free, total, nil
}
