package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/ratelimit/application"
	"restaurant-gateway/middleware/ratelimit/domain"
	"restaurant-gateway/middleware/respond"
)

// Policy é uma política de janela fixa: config + derivação de chave sobre um Store.
type Policy struct {
	cfg   domain.Config
	keyFn KeyFunc
	svc   application.Service
	stats domain.StatsStore
	log   logger.Logger
	now   func() time.Time
}

// Check deriva a chave, incrementa e decide. Nunca falha: problema na derivação
// da chave vira decisão fail-open (logada).
func (p *Policy) Check(r *http.Request) domain.Decision {
	key, err := p.deriveKey(r)
	if err != nil {
		p.log.Warn("rate limit key derivation failed, allowing request", map[string]any{
			"policy": p.cfg.Name,
			"method": r.Method,
			"path":   r.URL.Path,
			"err":    err,
		})
		return p.svc.FailOpen()
	}

	dec := p.svc.Decide(domain.Key(key))
	p.record(r, key, dec)
	return dec
}

func (p *Policy) deriveKey(r *http.Request) (key string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			key, err = "", fmt.Errorf("key func panic: %v", rec)
		}
	}()
	return p.keyFn(r)
}

// record envia o evento ao StatsStore. Best-effort: erro só é logado.
func (p *Policy) record(r *http.Request, key string, dec domain.Decision) {
	if p.stats == nil {
		return
	}
	err := p.stats.Record(r.Context(), domain.StatsEvent{
		Policy:  p.cfg.Name,
		Key:     domain.Key(key),
		Allowed: dec.Allowed,
		Method:  r.Method,
		Path:    r.URL.Path,
		At:      p.now(),
	})
	if err != nil {
		p.log.Warn("rate limit stats record failed", map[string]any{"policy": p.cfg.Name, "err": err})
	}
}

// Middleware aplica a política: headers X-RateLimit-* em toda resposta,
// 429 com envelope quando a janela estourou.
func (p *Policy) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := p.Check(r)
			now := p.now()
			if !dec.Allowed {
				respond.TooManyRequests(w, dec, now)
				return
			}
			respond.RateLimitHeaders(w, dec, now)
			next.ServeHTTP(w, r)
		})
	}
}

func (p *Policy) Config() domain.Config { return p.cfg }

// Stats devolve o tamanho do Store da política (compartilhado com as demais do mesmo Limiter).
func (p *Policy) Stats() Stats {
	if p.svc.Store == nil {
		return Stats{}
	}
	return Stats{Size: p.svc.Store.Size()}
}
