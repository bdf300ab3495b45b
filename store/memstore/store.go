package memstore

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	invalidationcache "github.com/karupanerura/invalidation-cache"
	"github.com/karupanerura/invalidation-cache/store"
)

type kind uint8

const (
	scalarKind kind = iota
	hashKind
)

type entry struct {
	kind   kind
	value  string
	fields map[string]string

	// expiresAt is the moment the entry lapses.
	// The zero value means the entry never expires.
	expiresAt time.Time
}

func (e *entry) live(now time.Time) bool {
	return e != nil && (e.expiresAt.IsZero() || now.Before(e.expiresAt))
}

// Store is an in-memory key-value store.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	options options

	stop      chan struct{}
	wg        conc.WaitGroup
	closeOnce sync.Once
}

var _ invalidationcache.KVStore = (*Store)(nil)

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	s := &Store{
		entries: map[string]*entry{},
		options: options,
	}
	if options.janitorInterval > 0 {
		s.stop = make(chan struct{})
		s.wg.Go(s.janitor)
	}
	return s
}

// Get retrieves the scalar value stored at key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.entries[key]
	if !e.live(s.options.clock.Now()) {
		return "", false, nil
	}
	if e.kind != scalarKind {
		return "", false, fmt.Errorf("%w: %q is a hash", store.ErrWrongType, key)
	}
	return e.value, true, nil
}

// Set stores a scalar value at key, replacing any existing entry.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{kind: scalarKind, value: value}
	if ttl > 0 {
		e.expiresAt = s.options.clock.Now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

// Delete removes the key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Exists reports whether the key holds a live entry of any kind.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries[key].live(s.options.clock.Now()), nil
}

// TimeToLive returns the remaining lifetime of the key.
func (s *Store) TimeToLive(_ context.Context, key string) (time.Duration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.options.clock.Now()
	e := s.entries[key]
	if !e.live(now) || e.expiresAt.IsZero() {
		return 0, false, nil
	}
	return e.expiresAt.Sub(now), true, nil
}

// Expire resets the key's TTL without rewriting its value.
// A non-positive ttl removes the key instead.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.options.clock.Now()
	e := s.entries[key]
	if !e.live(now) {
		return false, nil
	}
	if ttl <= 0 {
		delete(s.entries, key)
		return true, nil
	}
	e.expiresAt = now.Add(ttl)
	return true, nil
}

// HashGet retrieves a single field of the hash stored at key.
func (s *Store) HashGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.entries[key]
	if !e.live(s.options.clock.Now()) {
		return "", false, nil
	}
	if e.kind != hashKind {
		return "", false, fmt.Errorf("%w: %q is a scalar", store.ErrWrongType, key)
	}
	v, ok := e.fields[field]
	return v, ok, nil
}

// HashSet stores the given fields in the hash at key, creating the hash
// without expiry if it does not exist.
func (s *Store) HashSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if !e.live(s.options.clock.Now()) {
		e = &entry{kind: hashKind, fields: make(map[string]string, len(fields))}
		s.entries[key] = e
	} else if e.kind != hashKind {
		return fmt.Errorf("%w: %q is a scalar", store.ErrWrongType, key)
	}
	maps.Copy(e.fields, fields)
	return nil
}

// Len reports the number of entries currently held, including expired
// entries that have not yet been purged.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Close stops the background janitor, if one was enabled.
// The store remains usable after Close; only the eager purging stops.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
			s.wg.Wait()
		}
	})
	return nil
}

func (s *Store) janitor() {
	ticker := time.NewTicker(s.options.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *Store) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.options.clock.Now()
	for key, e := range s.entries {
		if !e.live(now) {
			delete(s.entries, key)
		}
	}
}
