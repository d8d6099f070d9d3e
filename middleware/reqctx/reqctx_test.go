package reqctx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-gateway/middleware/auth/domain"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func capture(t *testing.T, h func(http.Handler) http.Handler, req *http.Request) (RequestContext, *httptest.ResponseRecorder) {
	t.Helper()
	var got RequestContext
	var ok bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = From(r.Context())
	})
	rr := httptest.NewRecorder()
	h(inner).ServeHTTP(rr, req)
	if !ok {
		t.Fatalf("expected RequestContext in context")
	}
	return got, rr
}

func TestMiddleware_GeneratesID(t *testing.T) {
	rc, rr := capture(t, Middleware, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(rc.RequestID); err != nil {
		t.Fatalf("expected uuid request id, got %q", rc.RequestID)
	}
	if rr.Header().Get(HeaderRequestID) != rc.RequestID {
		t.Fatalf("expected request id echoed in response")
	}
	if rc.StartedAt.IsZero() || rc.Identity != nil {
		t.Fatalf("unexpected context %+v", rc)
	}
}

func TestMiddleware_HonorsInboundHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")

	rc, _ := capture(t, Middleware, req)
	if rc.RequestID != "abc-123" {
		t.Fatalf("expected inbound id, got %q", rc.RequestID)
	}
}

func TestMiddleware_PrefersChiRequestID(t *testing.T) {
	chain := func(next http.Handler) http.Handler { return chimw.RequestID(Middleware(next)) }

	rc, _ := capture(t, chain, httptest.NewRequest(http.MethodGet, "/", nil))
	if rc.RequestID == "" {
		t.Fatalf("expected chi request id")
	}
	if _, err := uuid.Parse(rc.RequestID); err == nil {
		t.Fatalf("expected chi formatted id, got uuid %q", rc.RequestID)
	}
}

func TestWithIdentity_KeepsRequestFields(t *testing.T) {
	ctx := With(context.Background(), RequestContext{RequestID: "r1"})
	ctx = WithIdentity(ctx, domain.Identity{ID: "u1", Role: domain.RoleUser})

	if RequestID(ctx) != "r1" {
		t.Fatalf("request id lost")
	}
	if id := Identity(ctx); id == nil || id.ID != "u1" {
		t.Fatalf("expected identity u1, got %+v", id)
	}
	if Identity(context.Background()) != nil {
		t.Fatalf("expected nil identity on empty context")
	}
}
