package testsupport

import (
	"context"
	"errors"
	"sync"
	"time"

	"countdown/internal/framecache"
)

// ErrStoreDown is returned by FakeStore when failure injection is enabled.
var ErrStoreDown = errors.New("fake store unavailable")

// FakeStore is an in-memory framecache.Store that records every call and can
// fail on demand. Expiry is evaluated against Now, which defaults to the zero
// time (nothing expires) and can be moved by tests.
type FakeStore struct {
	mu      sync.Mutex
	entries map[string]framecache.Entry

	Now       time.Time
	FailHas   bool
	FailGet   bool
	FailSave  bool
	HasCalls  int
	GetCalls  int
	SaveCalls int
}

// NewFakeStore returns an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{entries: make(map[string]framecache.Entry)}
}

func (s *FakeStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HasCalls++
	if s.FailHas {
		return false, ErrStoreDown
	}
	_, ok := s.live(key)
	return ok, nil
}

func (s *FakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls++
	if s.FailGet {
		return nil, ErrStoreDown
	}
	entry, ok := s.live(key)
	if !ok {
		return nil, framecache.ErrNotFound
	}
	return append([]byte(nil), entry.Value...), nil
}

func (s *FakeStore) Save(_ context.Context, entry framecache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCalls++
	if s.FailSave {
		return ErrStoreDown
	}
	entry.Value = append([]byte(nil), entry.Value...)
	s.entries[entry.Key] = entry
	return nil
}

// Entry returns the stored entry regardless of expiry.
func (s *FakeStore) Entry(key string) (framecache.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Put seeds an entry directly, bypassing call counters.
func (s *FakeStore) Put(entry framecache.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
}

// Len reports the number of stored entries.
func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Calls returns Has+Get+Save call counts.
func (s *FakeStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.HasCalls + s.GetCalls + s.SaveCalls
}

func (s *FakeStore) live(key string) (framecache.Entry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return framecache.Entry{}, false
	}
	if !s.Now.IsZero() && !entry.ExpiresAt.After(s.Now) {
		return framecache.Entry{}, false
	}
	return entry, true
}
