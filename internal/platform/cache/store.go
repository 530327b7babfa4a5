package cache

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-fantasy/internal/platform/resilience"
)

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Store is an in-memory map with optional TTL and an optional capacity.
// When full, inserting a new key evicts the oldest inserted key. Updating an
// existing key keeps its insertion position.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List
	ttl      time.Duration
	capacity int
	evicted  uint64
	now      func() time.Time
	flight   resilience.SingleFlight
}

type Option func(*Store)

// WithCapacity bounds the number of keys. Zero or negative means unbounded.
func WithCapacity(capacity int) Option {
	return func(s *Store) {
		s.capacity = capacity
	}
}

// WithClock overrides the clock used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	e := elem.Value.(*entry)
	if s.ttl > 0 && !e.expiresAt.After(s.now()) {
		s.removeLocked(elem)
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		return
	}

	if s.capacity > 0 {
		for s.order.Len() >= s.capacity {
			oldest := s.order.Front()
			if oldest == nil {
				break
			}
			s.removeLocked(oldest)
			s.evicted++
		}
	}
	s.entries[key] = s.order.PushBack(&entry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	if elem, ok := s.entries[key]; ok {
		s.removeLocked(elem)
	}
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key, elem := range s.entries {
		if strings.HasPrefix(key, prefix) {
			s.removeLocked(elem)
		}
	}
	s.mu.Unlock()
}

// Len is the number of stored keys, expired ones included until touched.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Evicted is the number of keys dropped for capacity.
func (s *Store) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// Keys lists stored keys from oldest to newest insertion.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(*entry).key)
	}
	return out
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(s.entries, e.key)
	s.order.Remove(elem)
}
