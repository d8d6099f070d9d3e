package infra

import (
	"context"
	"maps"
	"sync"

	"restaurant-gateway/middleware/ratelimit/domain"
)

// MemoryStatsStore mantém os contadores no processo, sem expiração.
// Usado em dev, nos testes e quando RATE_STATS_ENABLED=false.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    domain.Counters
	byPolicy map[string]domain.Counters
	byRoute  map[string]domain.Counters
	byKey    map[string]domain.Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackKeys liga contadores por chave derivada (cardinalidade alta).
func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byPolicy: map[string]domain.Counters{},
		byRoute:  map[string]domain.Counters{},
		byKey:    map[string]domain.Counters{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.Add(ev.Allowed)
	incr(s.byPolicy, ev.Policy, ev.Allowed)
	incr(s.byRoute, ev.Route(), ev.Allowed)
	if s.trackKeys {
		incr(s.byKey, string(ev.Key), ev.Allowed)
	}
	return nil
}

func incr(m map[string]domain.Counters, k string, allowed bool) {
	if k == "" {
		return
	}
	c := m[k]
	c.Add(allowed)
	m[k] = c
}

func (s *MemoryStatsStore) Snapshot(context.Context) (domain.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StatsSnapshot{Total: s.total, ByPolicy: maps.Clone(s.byPolicy)}, nil
}

func (s *MemoryStatsStore) Total() domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByPolicy() map[string]domain.Counters { return s.copyOf(s.byPolicy) }

func (s *MemoryStatsStore) ByRoute() map[string]domain.Counters { return s.copyOf(s.byRoute) }

func (s *MemoryStatsStore) ByKey() map[string]domain.Counters { return s.copyOf(s.byKey) }

func (s *MemoryStatsStore) copyOf(m map[string]domain.Counters) map[string]domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(m)
}
