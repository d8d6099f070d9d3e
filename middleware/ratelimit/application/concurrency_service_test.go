package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakePool registra o ctx recebido e responde conforme grant.
type fakePool struct {
	grant    bool
	calls    int
	deadline bool
}

func (p *fakePool) Acquire(ctx context.Context) (func(), bool) {
	p.calls++
	_, p.deadline = ctx.Deadline()
	if !p.grant {
		<-ctx.Done()
		return nil, false
	}
	return func() {}, true
}

func (p *fakePool) InUse() int { return 0 }
func (p *fakePool) Cap() int   { return 1 }

func TestConcurrencyService_Acquire(t *testing.T) {
	cases := []struct {
		name         string
		pool         *fakePool
		timeout      time.Duration
		wantErr      error
		wantDeadline bool
	}{
		{name: "granted without timeout", pool: &fakePool{grant: true}},
		{name: "granted with timeout", pool: &fakePool{grant: true}, timeout: time.Second, wantDeadline: true},
		{name: "saturated", pool: &fakePool{}, timeout: 10 * time.Millisecond, wantErr: ErrSaturated, wantDeadline: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := ConcurrencyService{Pool: tc.pool, AcquireTimeout: tc.timeout}
			release, err := svc.Acquire(context.Background())

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && release == nil {
				t.Fatalf("expected release func")
			}
			if tc.wantErr != nil && release != nil {
				t.Fatalf("expected nil release on error")
			}
			if tc.pool.calls != 1 || tc.pool.deadline != tc.wantDeadline {
				t.Fatalf("calls=%d deadline=%v", tc.pool.calls, tc.pool.deadline)
			}
		})
	}
}

func TestConcurrencyService_CanceledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConcurrencyService{Pool: &fakePool{}}.Acquire(ctx)
	if !errors.Is(err, ErrSaturated) {
		t.Fatalf("expected ErrSaturated, got %v", err)
	}
}

func TestConcurrencyService_NoPool(t *testing.T) {
	release, err := ConcurrencyService{}.Acquire(context.Background())
	if err != nil || release == nil {
		t.Fatalf("expected no-op release, got err=%v", err)
	}
	release()
}
