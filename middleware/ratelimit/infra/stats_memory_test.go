package infra

import (
	"context"
	"testing"

	"restaurant-gateway/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsByPolicyAndRoute(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Policy: "login", Key: "login:1.2.3.4:a@b.com", Allowed: true, Method: "POST", Path: "/auth/login"})
	_ = s.Record(ctx, domain.StatsEvent{Policy: "login", Key: "login:1.2.3.4:a@b.com", Allowed: false, Method: "POST", Path: "/auth/login"})
	_ = s.Record(ctx, domain.StatsEvent{Policy: "ip", Key: "ip:1.2.3.4", Allowed: true, Method: "GET", Path: "/public/menu"})

	if got := s.Total(); got.Allowed != 2 || got.Denied != 1 {
		t.Fatalf("unexpected total %+v", got)
	}
	if got := s.ByPolicy()["login"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected login counters %+v", got)
	}
	if got := s.ByRoute()["GET /public/menu"]; got.Allowed != 1 {
		t.Fatalf("unexpected route counters %+v", got)
	}
	if got := s.ByKey()["ip:1.2.3.4"]; got.Allowed != 1 {
		t.Fatalf("unexpected key counters %+v", got)
	}
}

func TestMemoryStatsStore_KeysNotTrackedByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	_ = s.Record(context.Background(), domain.StatsEvent{Policy: "ip", Key: "ip:1.2.3.4", Allowed: true})

	if len(s.ByKey()) != 0 {
		t.Fatalf("expected no per-key counters")
	}
}

func TestMemoryStatsStore_SnapshotIsCopy(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()
	_ = s.Record(ctx, domain.StatsEvent{Policy: "strict", Allowed: false})

	snap, _ := s.Snapshot(ctx)
	snap.ByPolicy["strict"] = domain.Counters{}

	if got := s.ByPolicy()["strict"]; got.Denied != 1 {
		t.Fatalf("snapshot must not alias internal state, got %+v", got)
	}
	if snap.Total.Denied != 1 {
		t.Fatalf("unexpected total %+v", snap.Total)
	}
}
