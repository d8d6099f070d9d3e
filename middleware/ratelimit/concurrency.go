package ratelimit

import (
	"net/http"
	"time"

	"restaurant-gateway/middleware/ratelimit/application"
	"restaurant-gateway/middleware/ratelimit/domain"
	"restaurant-gateway/middleware/ratelimit/infra"
	"restaurant-gateway/middleware/respond"
)

// ConcurrencyOptions configura o limite de requests em voo.
// Pool tem precedência sobre Max; sem nenhum dos dois o middleware não faz nada.
type ConcurrencyOptions struct {
	Max            int
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

func (o ConcurrencyOptions) pool() domain.SlotPool {
	if o.Pool != nil {
		return o.Pool
	}
	if o.Max > 0 {
		return infra.NewChanPool(o.Max)
	}
	return nil
}

// ConcurrencyMiddleware segura o request até haver vaga. Estourado o
// AcquireTimeout (ou cancelado o request) responde 503 com Retry-After: 1.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	pool := opts.pool()
	if pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	svc := application.ConcurrencyService{Pool: pool, AcquireTimeout: opts.AcquireTimeout}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				w.Header().Set(respond.HeaderRetryAfter, "1")
				respond.Error(w, http.StatusServiceUnavailable, respond.CodeServiceUnavailable, "Server is busy, please retry")
				return
			}
			defer release()
			next.ServeHTTP(w, r)
		})
	}
}
