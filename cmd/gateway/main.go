package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"restaurant-gateway/internal/config"
	"restaurant-gateway/internal/gateway"
	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/auth"
	"restaurant-gateway/middleware/auth/application"
	authdomain "restaurant-gateway/middleware/auth/domain"
	authinfra "restaurant-gateway/middleware/auth/infra"
	"restaurant-gateway/middleware/ratelimit"
	"restaurant-gateway/middleware/ratelimit/domain"
	"restaurant-gateway/middleware/ratelimit/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.RequireUpstream(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// usuários ativos: Postgres se DATABASE_URL, senão memória (vazia)
	var users authdomain.UserLookup
	if cfg.DatabaseURL != "" {
		db, err := authinfra.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres error: %v", err)
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		users = authinfra.NewPostgresUsers(db)
	} else {
		logg.Warn("DATABASE_URL not set, using empty in-memory user lookup", nil)
		users = authinfra.NewMemoryUsers()
	}

	tokens, err := application.NewTokenService(application.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTExpiresIn,
		Users:  users,
	})
	if err != nil {
		log.Fatalf("token service error: %v", err)
	}

	// sem Redis os contadores ficam no processo e somem no restart
	var statsStore interface {
		domain.StatsStore
		domain.StatsReader
	} = infra.NewMemoryStatsStore()
	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		pingCancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		)
	}

	store := infra.NewMemoryStore()
	defer func() { _ = store.Close() }()

	limiter := ratelimit.NewLimiter(store,
		ratelimit.WithDefaults(cfg.RateLimitWindow, cfg.RateLimitMaxRequests),
		ratelimit.WithStats(statsStore),
		ratelimit.WithLogger(logg),
	)
	limiter.StartReporter(ctx, 5*time.Minute)

	var burst domain.LimiterStore
	if cfg.BurstRPS > 0 {
		buckets := infra.NewBucketStore(cfg.BurstRPS, cfg.BurstSize)
		buckets.StartJanitor(ctx)
		burst = buckets
	}

	h := gateway.NewRouter(gateway.Options{
		Upstream: gateway.NewProxy(target, logg),
		Auth:     auth.New(auth.Options{Verifier: tokens, Logger: logg}),
		Limiter:  limiter,
		Policies: gateway.NewPolicies(limiter, gateway.Windows{
			DefaultWindow:  cfg.RateLimitWindow,
			DefaultMax:     cfg.RateLimitMaxRequests,
			StrictWindow:   cfg.StrictWindow,
			StrictMax:      cfg.StrictMaxRequests,
			LoginWindow:    cfg.LoginWindow,
			LoginMax:       cfg.LoginMaxRequests,
			RegisterWindow: cfg.RegisterWindow,
			RegisterMax:    cfg.RegisterMaxRequests,
		}),
		Burst:              burst,
		ConcurrencyMax:     cfg.ConcurrencyMax,
		ConcurrencyTimeout: cfg.ConcurrencyTimeout,
		Stats:              statsStore,
		Logger:             logg,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logg.Info("gateway listening", map[string]any{"addr": cfg.ListenAddr, "upstream": target.String()})
	logg.Info("rate limits", map[string]any{
		"default":  fmt.Sprintf("%s/%d", cfg.RateLimitWindow, cfg.RateLimitMaxRequests),
		"strict":   fmt.Sprintf("%s/%d", cfg.StrictWindow, cfg.StrictMaxRequests),
		"login":    fmt.Sprintf("%s/%d", cfg.LoginWindow, cfg.LoginMaxRequests),
		"register": fmt.Sprintf("%s/%d", cfg.RegisterWindow, cfg.RegisterMaxRequests),
	})
	logg.Info("protections", map[string]any{
		"burst_rps":           cfg.BurstRPS,
		"burst_size":          cfg.BurstSize,
		"concurrency_max":     cfg.ConcurrencyMax,
		"concurrency_timeout": cfg.ConcurrencyTimeout.String(),
		"stats_enabled":       cfg.Stats.Enabled,
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	logg.Info("gateway stopped", nil)
}
