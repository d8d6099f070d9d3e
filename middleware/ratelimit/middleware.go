package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"
	"restaurant-gateway/middleware/respond"
)

// BurstOptions configura o token bucket por cliente que roda antes das políticas
// de janela fixa. Ele suaviza rajadas; não substitui as janelas.
type BurstOptions struct {
	Store domain.LimiterStore
	// KeyFn padrão: IP do cliente (ClientIP).
	KeyFn KeyFunc
	// RetryAfter padrão 1s.
	RetryAfter time.Duration
	// AddHeaders expõe X-RateLimit-RPS/Burst quando o Store informa a taxa.
	AddHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// BurstMiddleware rejeita com 429 quando o bucket do cliente está vazio.
// Store nil desliga o middleware.
func BurstMiddleware(opts BurstOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = func(r *http.Request) (string, error) { return ClientIP(r), nil }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := opts.KeyFn(r)
			if err != nil {
				// mesma regra das políticas: sem chave, libera
				next.ServeHTTP(w, r)
				return
			}

			if opts.AddHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", strconv.FormatFloat(ri.RPS(), 'f', -1, 64))
					w.Header().Set("X-RateLimit-Burst", strconv.Itoa(ri.Burst()))
				}
			}

			if !opts.Store.Get(domain.Key(key)).Allow() {
				w.Header().Set(respond.HeaderRetryAfter, strconv.Itoa(retrySeconds(opts.RetryAfter)))
				respond.Error(w, http.StatusTooManyRequests, respond.CodeTooManyRequests, "Too many requests, please slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retrySeconds arredonda para cima; Retry-After não aceita fração.
func retrySeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
