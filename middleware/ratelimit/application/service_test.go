package application

import (
	"testing"
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"
)

// countingStore é um Store mínimo com janela fixa e relógio controlado.
type countingStore struct {
	now     time.Time
	records map[domain.Key]domain.Record
}

func newCountingStore(now time.Time) *countingStore {
	return &countingStore{now: now, records: map[domain.Key]domain.Record{}}
}

func (s *countingStore) Get(key domain.Key) (domain.Record, bool) {
	rec, ok := s.records[key]
	if !ok || rec.Expired(s.now) {
		return domain.Record{}, false
	}
	return rec, true
}

func (s *countingStore) Increment(key domain.Key, window time.Duration) domain.Record {
	rec, ok := s.Get(key)
	if !ok {
		rec = domain.Record{Key: key, ResetAt: s.now.Add(window)}
	}
	rec.Count++
	s.records[key] = rec
	return rec
}

func (s *countingStore) Delete(key domain.Key) { delete(s.records, key) }
func (s *countingStore) Clear()                { s.records = map[domain.Key]domain.Record{} }
func (s *countingStore) Size() int             { return len(s.records) }

func TestService_Decide_TwoThenReject(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc := Service{
		Store:  newCountingStore(now),
		Config: domain.Config{Window: time.Minute, MaxRequests: 2},
		Now:    func() time.Time { return now },
	}

	wantAllowed := []bool{true, true, false}
	wantRemaining := []int{1, 0, 0}
	for i := range wantAllowed {
		dec := svc.Decide("k")
		if dec.Allowed != wantAllowed[i] {
			t.Fatalf("call %d: expected allowed=%v, got %v", i+1, wantAllowed[i], dec.Allowed)
		}
		if dec.Remaining != wantRemaining[i] {
			t.Fatalf("call %d: expected remaining=%d, got %d", i+1, wantRemaining[i], dec.Remaining)
		}
		if dec.Limit != 2 {
			t.Fatalf("call %d: expected limit=2, got %d", i+1, dec.Limit)
		}
		if !dec.ResetAt.Equal(now.Add(time.Minute)) {
			t.Fatalf("call %d: expected resetAt fixed at first hit, got %s", i+1, dec.ResetAt)
		}
	}
}

func TestService_Decide_AllowsAgainAfterWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := newCountingStore(now)
	svc := Service{Store: store, Config: domain.Config{Window: time.Minute, MaxRequests: 1}}

	if !svc.Decide("k").Allowed {
		t.Fatalf("expected first call allowed")
	}
	if svc.Decide("k").Allowed {
		t.Fatalf("expected second call rejected")
	}

	store.now = now.Add(time.Minute)
	dec := svc.Decide("k")
	if !dec.Allowed || dec.Remaining != 0 {
		t.Fatalf("expected allowed with remaining=0 in new window, got %+v", dec)
	}
}

func TestService_FailOpen(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc := Service{
		Config: domain.Config{Window: 30 * time.Second, MaxRequests: 7},
		Now:    func() time.Time { return now },
	}

	dec := svc.FailOpen()
	if !dec.Allowed || !dec.FailOpen {
		t.Fatalf("expected fail-open allow, got %+v", dec)
	}
	if dec.Remaining != 7 || dec.Limit != 7 {
		t.Fatalf("expected remaining=limit=7, got %+v", dec)
	}
	if !dec.ResetAt.Equal(now.Add(30 * time.Second)) {
		t.Fatalf("unexpected resetAt %s", dec.ResetAt)
	}
}

func TestService_Decide_NoStoreFailsOpen(t *testing.T) {
	svc := Service{Config: domain.Config{Window: time.Second, MaxRequests: 3}}
	if dec := svc.Decide("k"); !dec.Allowed || !dec.FailOpen {
		t.Fatalf("expected allow without store, got %+v", dec)
	}
}
