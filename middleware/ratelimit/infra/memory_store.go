package infra

import (
	"sync"
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"
)

// MemoryStore é o contador de janela fixa em memória (domain.Store).
//
// Cada chave tem um único prazo: o timer de remoção é armado uma vez, na criação
// do registro, para o mesmo instante do ResetAt. Incrementos não rearmam o timer.
// Além do timer, Get/Increment descartam registros vencidos na leitura.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[domain.Key]*memoryEntry
	now     func() time.Time
	timers  bool
}

type memoryEntry struct {
	rec   domain.Record
	timer *time.Timer
}

type MemoryStoreOption func(*MemoryStore)

// WithClock troca o relógio usado para ResetAt e expiração lazy.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

// WithEvictionTimers liga/desliga os timers de remoção (a expiração lazy continua).
func WithEvictionTimers(enabled bool) MemoryStoreOption {
	return func(s *MemoryStore) { s.timers = enabled }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[domain.Key]*memoryEntry),
		now:     time.Now,
		timers:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(key domain.Key) (domain.Record, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.live(key, now)
	if !ok {
		return domain.Record{}, false
	}
	return ent.rec, true
}

func (s *MemoryStore) Increment(key domain.Key, window time.Duration) domain.Record {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.live(key, now); ok {
		ent.rec.Count++
		return ent.rec
	}

	ent := &memoryEntry{rec: domain.Record{Key: key, Count: 1, ResetAt: now.Add(window)}}
	if s.timers && window > 0 {
		ent.timer = time.AfterFunc(window, func() { s.evict(key, ent) })
	}
	s.entries[key] = ent
	return ent.rec
}

func (s *MemoryStore) Delete(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(key)
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		s.remove(k)
	}
}

func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close para todos os timers pendentes e esvazia o store.
func (s *MemoryStore) Close() error {
	s.Clear()
	return nil
}

// live retorna a entrada se ainda estiver na janela; vencida é removida na hora.
// Chamar com mu travado.
func (s *MemoryStore) live(key domain.Key, now time.Time) (*memoryEntry, bool) {
	ent, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if ent.rec.Expired(now) {
		s.remove(key)
		return nil, false
	}
	return ent, true
}

// remove apaga a chave e para o timer. Chamar com mu travado.
func (s *MemoryStore) remove(key domain.Key) {
	ent, ok := s.entries[key]
	if !ok {
		return
	}
	if ent.timer != nil {
		ent.timer.Stop()
	}
	delete(s.entries, key)
}

// evict roda no timer. Só remove se a entrada ainda for a mesma que armou o
// timer; disparo após remoção manual é no-op.
func (s *MemoryStore) evict(key domain.Key, armed *memoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[key]; ok && cur == armed {
		delete(s.entries, key)
	}
}
