package config

import (
	"strings"
	"testing"
	"time"
)

const secret = "0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Errorf("JWTExpiresIn = %s, want 24h", cfg.JWTExpiresIn)
	}
	if cfg.LoginWindow != 15*time.Minute || cfg.LoginMaxRequests != 5 {
		t.Errorf("login = %s/%d, want 15m/5", cfg.LoginWindow, cfg.LoginMaxRequests)
	}
	if cfg.RegisterWindow != time.Hour || cfg.RegisterMaxRequests != 3 {
		t.Errorf("register = %s/%d, want 1h/3", cfg.RegisterWindow, cfg.RegisterMaxRequests)
	}
	if cfg.RateLimitWindow != time.Minute || cfg.RateLimitMaxRequests != 100 {
		t.Errorf("rate limit = %s/%d, want 1m/100", cfg.RateLimitWindow, cfg.RateLimitMaxRequests)
	}
	if cfg.BurstRPS != 0 || cfg.ConcurrencyMax != 100 {
		t.Errorf("burst=%v concurrency=%d", cfg.BurstRPS, cfg.ConcurrencyMax)
	}
	if cfg.Stats.Enabled || cfg.Stats.Prefix != "ratelimit:stats" {
		t.Errorf("unexpected stats defaults %+v", cfg.Stats)
	}
	if err := cfg.RequireUpstream(); err == nil {
		t.Errorf("expected RequireUpstream to fail without UPSTREAM_URL")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("UPSTREAM_URL", "http://localhost:9000")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("LOGIN_MAX_REQUESTS", "10")
	t.Setenv("BURST_RPS", "2.5")
	t.Setenv("RATE_STATS_ENABLED", "true")
	t.Setenv("RATE_STATS_TRACK_KEYS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTExpiresIn != 2*time.Hour {
		t.Errorf("JWTExpiresIn = %s, want 2h", cfg.JWTExpiresIn)
	}
	if cfg.LoginMaxRequests != 10 {
		t.Errorf("LoginMaxRequests = %d, want 10", cfg.LoginMaxRequests)
	}
	if cfg.BurstRPS != 2.5 {
		t.Errorf("BurstRPS = %v, want 2.5", cfg.BurstRPS)
	}
	if !cfg.Stats.Enabled || !cfg.Stats.TrackKeys {
		t.Errorf("expected stats enabled with key tracking, got %+v", cfg.Stats)
	}
	if err := cfg.RequireUpstream(); err != nil {
		t.Errorf("RequireUpstream: %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET"},
		{"zero window", map[string]string{"JWT_SECRET": secret, "STRICT_WINDOW": "0s"}, "STRICT_WINDOW"},
		{"zero max", map[string]string{"JWT_SECRET": secret, "REGISTER_MAX_REQUESTS": "0"}, "REGISTER_MAX_REQUESTS"},
		{"burst without size", map[string]string{"JWT_SECRET": secret, "BURST_RPS": "5", "BURST_SIZE": "0"}, "BURST_SIZE"},
		{"bad duration", map[string]string{"JWT_SECRET": secret, "LOGIN_WINDOW": "soon"}, "config:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error mentioning %s", tc.want)
			}
			if !strings.HasPrefix(err.Error(), "config:") || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected config error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
