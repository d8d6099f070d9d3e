package infra

import (
	"context"
	"sync"
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// BucketStore guarda um rate.Limiter por cliente para o BurstMiddleware.
// Buckets sem acesso por idleTTL são descartados pelo janitor.
type BucketStore struct {
	rps   rate.Limit
	burst int

	idleTTL time.Duration
	sweep   time.Duration
	now     func() time.Time

	mu      sync.Mutex
	buckets map[domain.Key]*bucket
}

type bucket struct {
	*rate.Limiter
	touched time.Time
}

type BucketOption func(*BucketStore)

func WithIdleTTL(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.idleTTL = d }
}

// WithCleanupEvery <= 0 faz StartJanitor não subir goroutine.
func WithCleanupEvery(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.sweep = d }
}

func WithBucketClock(now func() time.Time) BucketOption {
	return func(s *BucketStore) { s.now = now }
}

func NewBucketStore(rps float64, burst int, opts ...BucketOption) *BucketStore {
	s := &BucketStore{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		sweep:   2 * time.Minute,
		now:     time.Now,
		buckets: map[domain.Key]*bucket{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BucketStore) RPS() float64 { return float64(s.rps) }

func (s *BucketStore) Burst() int { return s.burst }

func (s *BucketStore) Get(key domain.Key) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = b
	}
	b.touched = now
	return b.Limiter
}

func (s *BucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleanup descarta buckets ociosos e devolve quantos saíram.
func (s *BucketStore) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, b := range s.buckets {
		if b.touched.Before(cutoff) {
			delete(s.buckets, k)
			removed++
		}
	}
	return removed
}

// StartJanitor roda Cleanup a cada intervalo até o ctx encerrar.
func (s *BucketStore) StartJanitor(ctx context.Context) {
	if s.sweep <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(s.sweep)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
