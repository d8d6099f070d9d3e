package domain

import (
	"testing"
	"time"
)

func TestRecord_ExpiredAtResetBoundary(t *testing.T) {
	reset := time.Unix(1000, 0)
	r := Record{Key: "k", Count: 1, ResetAt: reset}

	if r.Expired(reset.Add(-time.Millisecond)) {
		t.Fatalf("expected record alive before resetAt")
	}
	if !r.Expired(reset) {
		t.Fatalf("expected record expired at resetAt")
	}
}

func TestDecision_RetryAfterRoundsUp(t *testing.T) {
	now := time.Unix(1000, 0)
	d := Decision{ResetAt: now.Add(2500 * time.Millisecond)}

	if got := d.RetryAfter(now); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
	if got := d.RetryAfter(now.Add(10 * time.Second)); got != 0 {
		t.Fatalf("expected 0 after reset, got %s", got)
	}
}
