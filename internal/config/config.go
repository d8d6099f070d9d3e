// Package config carrega e valida a configuração do gateway a partir do ambiente
// e de um .env opcional (Viper).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MinSecretLen é o tamanho mínimo aceito para JWT_SECRET.
const MinSecretLen = 16

type Config struct {
	ListenAddr  string `mapstructure:"LISTEN_ADDR"`
	UpstreamURL string `mapstructure:"UPSTREAM_URL"`

	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	// DatabaseURL vazio usa o lookup de usuários em memória.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RateLimitWindow      time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	RateLimitMaxRequests int           `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`
	StrictWindow         time.Duration `mapstructure:"STRICT_WINDOW"`
	StrictMaxRequests    int           `mapstructure:"STRICT_MAX_REQUESTS"`
	LoginWindow          time.Duration `mapstructure:"LOGIN_WINDOW"`
	LoginMaxRequests     int           `mapstructure:"LOGIN_MAX_REQUESTS"`
	RegisterWindow       time.Duration `mapstructure:"REGISTER_WINDOW"`
	RegisterMaxRequests  int           `mapstructure:"REGISTER_MAX_REQUESTS"`

	// BurstRPS <= 0 desliga o token bucket por IP.
	BurstRPS  float64 `mapstructure:"BURST_RPS"`
	BurstSize int     `mapstructure:"BURST_SIZE"`

	// ConcurrencyMax <= 0 desliga o limite de requisições em voo.
	ConcurrencyMax     int           `mapstructure:"CONCURRENCY_MAX"`
	ConcurrencyTimeout time.Duration `mapstructure:"CONCURRENCY_TIMEOUT"`

	Stats StatsConfig `mapstructure:",squash"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`
}

// StatsConfig controla as estatísticas de decisão no Redis.
type StatsConfig struct {
	Enabled       bool          `mapstructure:"RATE_STATS_ENABLED"`
	RedisAddr     string        `mapstructure:"RATE_STATS_REDIS_ADDR"`
	RedisPassword string        `mapstructure:"RATE_STATS_REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"RATE_STATS_REDIS_DB"`
	Prefix        string        `mapstructure:"RATE_STATS_PREFIX"`
	TTL           time.Duration `mapstructure:"RATE_STATS_TTL"`
	Bucket        string        `mapstructure:"RATE_STATS_BUCKET"`
	TrackKeys     bool          `mapstructure:"RATE_STATS_TRACK_KEYS"`
}

var defaults = map[string]any{
	"LISTEN_ADDR":    ":8080",
	"UPSTREAM_URL":   "",
	"JWT_SECRET":     "",
	"JWT_EXPIRES_IN": "24h",
	"DATABASE_URL":   "",

	"RATE_LIMIT_WINDOW":       "1m",
	"RATE_LIMIT_MAX_REQUESTS": 100,
	"STRICT_WINDOW":           "1m",
	"STRICT_MAX_REQUESTS":     10,
	"LOGIN_WINDOW":            "15m",
	"LOGIN_MAX_REQUESTS":      5,
	"REGISTER_WINDOW":         "1h",
	"REGISTER_MAX_REQUESTS":   3,

	"BURST_RPS":           0,
	"BURST_SIZE":          20,
	"CONCURRENCY_MAX":     100,
	"CONCURRENCY_TIMEOUT": "0s",

	"RATE_STATS_ENABLED":        false,
	"RATE_STATS_REDIS_ADDR":     "localhost:6379",
	"RATE_STATS_REDIS_PASSWORD": "",
	"RATE_STATS_REDIS_DB":       0,
	"RATE_STATS_PREFIX":         "ratelimit:stats",
	"RATE_STATS_TTL":            "24h",
	"RATE_STATS_BUCKET":         "minute",
	"RATE_STATS_TRACK_KEYS":     false,

	"LOG_LEVEL":  "info",
	"LOG_FORMAT": "text",
	"APP_NAME":   "gateway",
}

// Load lê o .env (se existir) e o ambiente, aplica defaults e valida.
// Variáveis de ambiente têm precedência sobre o .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // .env é opcional

	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checa as regras que não dependem do binário.
// UPSTREAM_URL é checado só pelo cmd/gateway (RequireUpstream).
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("config: LISTEN_ADDR must be set")
	}
	if len(c.JWTSecret) < MinSecretLen {
		return fmt.Errorf("config: JWT_SECRET must have at least %d bytes", MinSecretLen)
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("config: JWT_EXPIRES_IN must be positive")
	}

	windows := []struct {
		name   string
		window time.Duration
		max    int
	}{
		{"RATE_LIMIT", c.RateLimitWindow, c.RateLimitMaxRequests},
		{"STRICT", c.StrictWindow, c.StrictMaxRequests},
		{"LOGIN", c.LoginWindow, c.LoginMaxRequests},
		{"REGISTER", c.RegisterWindow, c.RegisterMaxRequests},
	}
	for _, w := range windows {
		if w.window <= 0 {
			return fmt.Errorf("config: %s_WINDOW must be positive", w.name)
		}
		if w.max <= 0 {
			return fmt.Errorf("config: %s_MAX_REQUESTS must be positive", w.name)
		}
	}

	if c.BurstRPS > 0 && c.BurstSize <= 0 {
		return errors.New("config: BURST_SIZE must be positive when BURST_RPS is set")
	}
	if c.ConcurrencyTimeout < 0 {
		return errors.New("config: CONCURRENCY_TIMEOUT must not be negative")
	}
	if c.Stats.Enabled && c.Stats.RedisAddr == "" {
		return errors.New("config: RATE_STATS_REDIS_ADDR must be set when RATE_STATS_ENABLED=true")
	}
	return nil
}

// RequireUpstream é a validação extra do binário de proxy.
func (c *Config) RequireUpstream() error {
	if c.UpstreamURL == "" {
		return errors.New("config: UPSTREAM_URL must be set")
	}
	return nil
}
