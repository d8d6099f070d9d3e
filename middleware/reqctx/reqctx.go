// Package reqctx carrega o contexto tipado de cada request pela cadeia de middlewares:
// identidade opcional, request id e instante de início.
package reqctx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"restaurant-gateway/middleware/auth/domain"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-Id"

type RequestContext struct {
	// Identity é nil enquanto o request não foi autenticado.
	Identity  *domain.Identity
	RequestID string
	StartedAt time.Time
}

type ctxKey struct{}

func With(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From devolve o contexto do request; ok=false se Middleware não rodou.
func From(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(RequestContext)
	return rc, ok
}

// WithIdentity grava a identidade verificada preservando request id e início.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	rc, _ := From(ctx)
	rc.Identity = &id
	return With(ctx, rc)
}

func Identity(ctx context.Context) *domain.Identity {
	rc, _ := From(ctx)
	return rc.Identity
}

func RequestID(ctx context.Context) string {
	rc, _ := From(ctx)
	return rc.RequestID
}

// Middleware inicializa o RequestContext.
//
// Request id: o do chi (middleware.RequestID) se houver, senão o header
// X-Request-Id de entrada, senão um uuid novo. O id é ecoado na resposta.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimw.GetReqID(r.Context())
		if id == "" {
			id = strings.TrimSpace(r.Header.Get(HeaderRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		ctx := With(r.Context(), RequestContext{RequestID: id, StartedAt: time.Now()})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
