package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Key identifies cached values of type V. Keys are validated with struct
// tags before use.
type Key[V any] interface {
	comparable
	fmt.Stringer
	// Matches reports whether v satisfies the lookup this key describes.
	Matches(v V) bool
}

// FetchFunc loads a value on a cache miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

type entry[K any, V any] struct {
	key   K
	value V
}

// Stats counts lookups served from memory and from fetches.
type Stats struct {
	Hits   int64
	Misses int64
}

// Store is an insertion-ordered cache-aside store. Entries never expire; they
// leave only through Invalidate or Reset. When several entries match a
// lookup the one inserted first wins.
type Store[K Key[V], V any] struct {
	name   string
	logger zerolog.Logger

	mu      sync.RWMutex
	entries []entry[K, V]
	byKey   map[K]int

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty store. name only appears in log lines.
func New[K Key[V], V any](name string, logger zerolog.Logger) *Store[K, V] {
	return &Store[K, V]{
		name:   name,
		logger: logger.With().Str("cache", name).Logger(),
		byKey:  make(map[K]int),
	}
}

// Resolve returns the first cached value matching k, or calls fetch, stores
// the result under k and returns it. Concurrent misses for the same key share
// one fetch. Failed fetches are not cached.
//
// The shared fetch runs under a context detached from the caller's
// cancellation, so one caller giving up does not fail the others. A caller
// whose ctx is done stops waiting and gets ctx.Err().
func (s *Store[K, V]) Resolve(ctx context.Context, k K, fetch FetchFunc[V]) (V, error) {
	var zero V
	if err := Validate(k); err != nil {
		return zero, err
	}

	if v, ok := s.find(k); ok {
		s.hits.Add(1)
		s.logger.Debug().Stringer("key", k).Msg("Cache hit")
		return v, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(k.String(), func() (any, error) {
		if v, ok := s.find(k); ok {
			return v, nil
		}
		s.misses.Add(1)
		s.logger.Debug().Stringer("key", k).Msg("Cache miss")

		v, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		s.add(k, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Refresh drops every entry matching k and resolves it again.
func (s *Store[K, V]) Refresh(ctx context.Context, k K, fetch FetchFunc[V]) (V, error) {
	if err := Validate(k); err != nil {
		var zero V
		return zero, err
	}
	s.Invalidate(k)
	return s.Resolve(ctx, k, fetch)
}

// Add stores v under k unless k is already present.
func (s *Store[K, V]) Add(k K, v V) error {
	if err := Validate(k); err != nil {
		return err
	}
	s.add(k, v)
	return nil
}

func (s *Store[K, V]) add(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[k]; exists {
		return
	}
	s.byKey[k] = len(s.entries)
	s.entries = append(s.entries, entry[K, V]{key: k, value: v})
}

// Find returns the first cached value stored under or matching k.
func (s *Store[K, V]) Find(k K) (V, bool) {
	if err := Validate(k); err != nil {
		var zero V
		return zero, false
	}
	return s.find(k)
}

func (s *Store[K, V]) find(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := len(s.entries)
	if idx, ok := s.byKey[k]; ok {
		limit = idx
	}
	for i := 0; i < limit; i++ {
		if k.Matches(s.entries[i].value) {
			return s.entries[i].value, true
		}
	}
	if limit < len(s.entries) {
		return s.entries[limit].value, true
	}

	var zero V
	return zero, false
}

// FindAll returns every cached value stored under or matching k, in insertion
// order.
func (s *Store[K, V]) FindAll(k K) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []V
	for _, e := range s.entries {
		if e.key == k || k.Matches(e.value) {
			out = append(out, e.value)
		}
	}
	return out
}

// Invalidate removes every entry stored under or matching k and reports how
// many were removed.
func (s *Store[K, V]) Invalidate(k K) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.key == k || k.Matches(e.value) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(s.entries[len(kept):])
	s.entries = kept

	s.byKey = make(map[K]int, len(kept))
	for i, e := range kept {
		if _, exists := s.byKey[e.key]; !exists {
			s.byKey[e.key] = i
		}
	}

	if removed > 0 {
		s.logger.Debug().Stringer("key", k).Int("removed", removed).Msg("Cache invalidated")
	}
	return removed
}

// Reset removes all entries.
func (s *Store[K, V]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.byKey = make(map[K]int)
}

// Len returns the number of cached entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Values returns a snapshot of all cached values in insertion order.
func (s *Store[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]V, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.value
	}
	return out
}

// Stats returns hit and miss counts.
func (s *Store[K, V]) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// Validate checks k against its struct tags.
func Validate(k any) error {
	if err := validate.Struct(k); err != nil {
		return &InvalidKeyError{Key: fmt.Sprint(k), Err: err}
	}
	return nil
}
