package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-gateway/middleware/ratelimit/infra"
	"restaurant-gateway/middleware/respond"
)

// holdingHandler ocupa a vaga até gate fechar e avisa em entered quando entrou.
func holdingHandler(entered chan<- struct{}, gate <-chan struct{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-gate
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://gateway/api/orders", nil))
	return rec
}

func TestConcurrencyMiddleware_SaturatedReturns503(t *testing.T) {
	pool := infra.NewChanPool(1)
	entered := make(chan struct{}, 1)
	gate := make(chan struct{})
	h := ConcurrencyMiddleware(ConcurrencyOptions{Pool: pool, AcquireTimeout: 20 * time.Millisecond})(holdingHandler(entered, gate))

	first := make(chan int, 1)
	go func() { first <- serve(h).Code }()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatalf("first request never reached the handler")
	}
	if pool.InUse() != 1 {
		t.Fatalf("expected one slot in use, got %d", pool.InUse())
	}

	rec := serve(h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while saturated, got %d", rec.Code)
	}
	if rec.Header().Get(respond.HeaderRetryAfter) != "1" {
		t.Fatalf("expected Retry-After: 1, got %q", rec.Header().Get(respond.HeaderRetryAfter))
	}
	var body respond.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Code != respond.CodeServiceUnavailable {
		t.Fatalf("unexpected envelope %+v", body)
	}

	close(gate)
	if code := <-first; code != http.StatusNoContent {
		t.Fatalf("expected first request 204, got %d", code)
	}
	if pool.InUse() != 0 {
		t.Fatalf("slot not released, inUse=%d", pool.InUse())
	}
}

func TestConcurrencyMiddleware_ReleasesAfterHandler(t *testing.T) {
	pool := infra.NewChanPool(1)
	h := ConcurrencyMiddleware(ConcurrencyOptions{Pool: pool, AcquireTimeout: 10 * time.Millisecond})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)

	for i := 0; i < 3; i++ {
		if rec := serve(h); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestConcurrencyMiddleware_Disabled(t *testing.T) {
	called := false
	h := ConcurrencyMiddleware(ConcurrencyOptions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	serve(h)
	if !called {
		t.Fatalf("expected pass-through without Max or Pool")
	}
}
