package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/daily-coupon/internal/platform/resilience"
)

// DefaultMaxEntries bounds a store that caches one value per day.
const DefaultMaxEntries = 64

type entry[V any] struct {
	value     V
	storedAt  time.Time
	expiresAt time.Time
}

// Store is an in-process TTL cache of day-keyed values. A ttl of zero keeps
// entries until they are deleted or evicted for capacity.
type Store[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	flight     resilience.SingleFlight[V]
}

type Option func(*options)

type options struct {
	maxEntries int
}

// WithMaxEntries caps the number of stored keys; n <= 0 keeps the default.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

func NewStore[V any](ttl time.Duration, opts ...Option) *Store[V] {
	o := options{maxEntries: DefaultMaxEntries}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[V]{
		entries:    make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: o.maxEntries,
		now:        time.Now,
	}
}

func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if s.expired(e, s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

func (s *Store[V]) Set(_ context.Context, key string, value V) {
	if key == "" {
		return
	}

	now := s.now()
	e := entry[V]{value: value, storedAt: now}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Store[V]) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value for key or runs loader once across
// concurrent callers. Failed loads are not cached.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (V, error)) (V, error) {
	var zero V
	if loader == nil {
		return zero, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (V, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return zero, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}

	return value, nil
}

func (s *Store[V]) expired(e entry[V], now time.Time) bool {
	return s.ttl > 0 && !e.expiresAt.After(now)
}

// evictLocked drops expired entries, then the oldest one if still full.
func (s *Store[V]) evictLocked(now time.Time) {
	for key, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, key)
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}

	oldestKey := ""
	var oldest time.Time
	for key, e := range s.entries {
		if oldestKey == "" || e.storedAt.Before(oldest) {
			oldestKey, oldest = key, e.storedAt
		}
	}
	delete(s.entries, oldestKey)
}
