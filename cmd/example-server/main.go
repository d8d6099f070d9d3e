package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/auth"
	"restaurant-gateway/middleware/auth/application"
	"restaurant-gateway/middleware/auth/domain"
	authinfra "restaurant-gateway/middleware/auth/infra"
	"restaurant-gateway/middleware/ratelimit"
	"restaurant-gateway/middleware/ratelimit/infra"
	"restaurant-gateway/middleware/reqctx"
	"restaurant-gateway/middleware/respond"

	"golang.org/x/crypto/bcrypt"
)

// Exemplo: os middlewares injetados direto no webserver (sem proxy), com usuários
// de demonstração em memória. Todos usam a senha demoPassword.
const demoPassword = "demo1234"

var demoUsers = []domain.User{
	{ID: "u1", Email: "cliente@example.com", Role: domain.RoleUser},
	{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin},
	{ID: "t1", Email: "dono@example.com", Role: domain.RoleTenantAdmin},
}

var demoTenants = map[string]string{"t1": "rest-1"}

func main() {
	logg := logger.NewFromEnv()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "example-server-dev-secret"
		logg.Warn("JWT_SECRET not set, using development secret", nil)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.MinCost)
	if err != nil {
		log.Fatalf("password hash error: %v", err)
	}

	users := authinfra.NewMemoryUsers(demoUsers...)
	tokens, err := application.NewTokenService(application.TokenConfig{Secret: secret, Users: users})
	if err != nil {
		log.Fatalf("token service error: %v", err)
	}

	stats := infra.NewMemoryStatsStore()
	pool := infra.NewChanPool(50)
	store := infra.NewMemoryStore()
	defer func() { _ = store.Close() }()
	limiter := ratelimit.NewLimiter(store, ratelimit.WithStats(stats), ratelimit.WithLogger(logg))
	authn := auth.New(auth.Options{Verifier: tokens, Logger: logg})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	buckets := infra.NewBucketStore(5, 10)
	buckets.StartJanitor(ctx)

	mux := http.NewServeMux()
	mux.Handle("POST /auth/login", limiter.Login(0, 0).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		for _, u := range demoUsers {
			if u.Email != email {
				continue
			}
			if bcrypt.CompareHashAndPassword(passwordHash, []byte(r.FormValue("password"))) != nil {
				break
			}
			tok, err := tokens.Issue(domain.Subject{UserID: u.ID, Email: u.Email, Role: u.Role, TenantID: demoTenants[u.ID]})
			if err != nil {
				respond.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not issue token")
				return
			}
			respond.JSON(w, http.StatusOK, map[string]any{"success": true, "token": tok, "expiresIn": tokens.TTL().String()})
			return
		}
		respond.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	})))

	me := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{"success": true, "user": reqctx.Identity(r.Context())})
	})
	mux.Handle("GET /api/me", authn.Authenticate(limiter.ByUser(0, 0).Middleware()(me)))

	adminStats := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap, _ := stats.Snapshot(r.Context())
		respond.JSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"store":    limiter.Stats(),
			"counters": snap,
			"inFlight": pool.InUse(),
			"byRoute":  stats.ByRoute(),
		})
	})
	mux.Handle("GET /admin/stats", authn.Authenticate(authn.RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin)(limiter.Strict(0, 0).Middleware()(adminStats))))

	mux.Handle("GET /restaurants/{id}", authn.Authenticate(authn.RequireTenantAccess(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{"success": true, "restaurant": r.PathValue("id")})
	}))))

	h := http.Handler(mux)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Pool: pool})(h)
	h = ratelimit.BurstMiddleware(ratelimit.BurstOptions{Store: buckets, AddHeaders: true})(h)
	h = reqctx.Middleware(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logg.Info("example server listening", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
