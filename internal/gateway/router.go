// Package gateway monta a tabela de rotas do gateway: autenticação, autorização
// e rate limit na frente do upstream.
package gateway

import (
	"net/http"
	"time"

	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/auth"
	"restaurant-gateway/middleware/auth/domain"
	"restaurant-gateway/middleware/ratelimit"
	rldomain "restaurant-gateway/middleware/ratelimit/domain"
	rlinfra "restaurant-gateway/middleware/ratelimit/infra"
	"restaurant-gateway/middleware/reqctx"
	"restaurant-gateway/middleware/respond"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Policies são as políticas de janela fixa usadas nas rotas.
type Policies struct {
	Login    *ratelimit.Policy
	Register *ratelimit.Policy
	ByIP     *ratelimit.Policy
	ByUser   *ratelimit.Policy
	Strict   *ratelimit.Policy
}

// NewPolicies cria os presets a partir de um Limiter já configurado.
func NewPolicies(l *ratelimit.Limiter, w Windows) Policies {
	return Policies{
		Login:    l.Login(w.LoginWindow, w.LoginMax),
		Register: l.Register(w.RegisterWindow, w.RegisterMax),
		ByIP:     l.ByIP(w.DefaultWindow, w.DefaultMax),
		ByUser:   l.ByUser(w.DefaultWindow, w.DefaultMax),
		Strict:   l.Strict(w.StrictWindow, w.StrictMax),
	}
}

// Windows agrupa janela/limite por preset (zero usa o padrão do preset).
type Windows struct {
	DefaultWindow  time.Duration
	DefaultMax     int
	StrictWindow   time.Duration
	StrictMax      int
	LoginWindow    time.Duration
	LoginMax       int
	RegisterWindow time.Duration
	RegisterMax    int
}

type Options struct {
	Upstream http.Handler
	Auth     *auth.Middleware
	Limiter  *ratelimit.Limiter
	Policies Policies

	// Burst nil desliga o token bucket por IP.
	Burst              rldomain.LimiterStore
	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration

	// Stats alimenta GET /admin/ratelimit/stats; nil responde 404 nessa rota.
	Stats rldomain.StatsReader

	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	var pool rldomain.SlotPool
	if opts.ConcurrencyMax > 0 {
		pool = rlinfra.NewChanPool(opts.ConcurrencyMax)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(reqctx.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(accessLog(opts.Logger))
	r.Use(ratelimit.BurstMiddleware(ratelimit.BurstOptions{Store: opts.Burst}))
	r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Pool:           pool,
		AcquireTimeout: opts.ConcurrencyTimeout,
	}))

	r.Get("/health", health(opts.Limiter, pool))

	p := opts.Policies
	a := opts.Auth

	r.With(p.Login.Middleware()).Post("/auth/login", opts.Upstream.ServeHTTP)
	r.With(p.Register.Middleware()).Post("/auth/register", opts.Upstream.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(a.Authenticate, p.ByUser.Middleware())
		r.Handle("/*", opts.Upstream)
	})
	r.Route("/public", func(r chi.Router) {
		r.Use(a.OptionalAuthenticate, p.ByIP.Middleware())
		r.Handle("/*", opts.Upstream)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(a.Authenticate, a.RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin), p.Strict.Middleware())
		if opts.Stats != nil {
			r.Get("/ratelimit/stats", stats(opts.Stats, opts.Logger))
		}
		r.Handle("/*", opts.Upstream)
	})
	r.Route("/restaurants", func(r chi.Router) {
		r.Use(a.Authenticate, a.RequireTenantAccess, p.ByUser.Middleware())
		r.Handle("/*", opts.Upstream)
	})

	return r
}

func health(l *ratelimit.Limiter, pool rldomain.SlotPool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if l != nil {
			body["rateLimit"] = l.Stats()
		}
		if pool != nil {
			body["concurrency"] = map[string]int{"inUse": pool.InUse(), "capacity": pool.Cap()}
		}
		respond.JSON(w, http.StatusOK, body)
	}
}

// stats expõe os contadores allowed/denied agregados por política.
func stats(reader rldomain.StatsReader, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := reader.Snapshot(r.Context())
		if err != nil {
			log.Error("rate limit stats read failed", map[string]any{"err": err})
			respond.Error(w, http.StatusServiceUnavailable, respond.CodeServiceUnavailable, "Statistics unavailable")
			return
		}
		respond.JSON(w, http.StatusOK, snap)
	}
}

// accessLog registra método, path, status e duração de cada request.
func accessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			rc, _ := reqctx.From(r.Context())
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"request_id":  rc.RequestID,
				"duration_ms": time.Since(rc.StartedAt).Milliseconds(),
			}
			log.Info("request", fields)
		})
	}
}
