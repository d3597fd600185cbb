// Package memstore keeps encoded frames in a bounded in-process LRU.
//
// Entries expire lazily: an expired entry is reported missing on read and
// removed at that point or by Prune. Eviction past capacity follows LRU order.
package memstore

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"countdown/internal/framecache"
)

// DefaultCapacity is used when New receives a non-positive size.
const DefaultCapacity = 4096

type item struct {
	value     []byte
	expiresAt time.Time
}

// Store is a framecache.Store backed by golang-lru.
type Store struct {
	cache    *lru.Cache[string, item]
	capacity int
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store holding at most capacity entries.
func New(capacity int, opts ...Option) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, item](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	s := &Store{cache: cache, capacity: capacity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	it, ok := s.cache.Peek(key)
	if !ok {
		return false, nil
	}
	if s.expired(it) {
		s.cache.Remove(key)
		return false, nil
	}
	return true, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	it, ok := s.cache.Get(key)
	if !ok {
		return nil, framecache.ErrNotFound
	}
	if s.expired(it) {
		s.cache.Remove(key)
		return nil, framecache.ErrNotFound
	}
	return append([]byte(nil), it.value...), nil
}

func (s *Store) Save(_ context.Context, entry framecache.Entry) error {
	if entry.Key == "" {
		return fmt.Errorf("save frame: empty key")
	}
	s.cache.Add(entry.Key, item{
		value:     append([]byte(nil), entry.Value...),
		expiresAt: entry.ExpiresAt,
	})
	return nil
}

// Stats reports entry counts and retained bytes.
func (s *Store) Stats(_ context.Context) (framecache.Stats, error) {
	stats := framecache.Stats{Backend: "memory", Capacity: s.capacity}
	for _, key := range s.cache.Keys() {
		it, ok := s.cache.Peek(key)
		if !ok {
			continue
		}
		stats.Entries++
		stats.TotalBytes += int64(len(it.value))
		if s.expired(it) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Prune removes entries expired at now.
func (s *Store) Prune(_ context.Context, now time.Time) (int, error) {
	removed := 0
	for _, key := range s.cache.Keys() {
		it, ok := s.cache.Peek(key)
		if !ok {
			continue
		}
		if !it.expiresAt.After(now) {
			if s.cache.Remove(key) {
				removed++
			}
		}
	}
	return removed, nil
}

// Len returns the number of entries, expired ones included.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) expired(it item) bool {
	return !it.expiresAt.After(s.now())
}
