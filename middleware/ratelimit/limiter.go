package ratelimit

import (
	"context"
	"runtime"
	"time"

	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/ratelimit/application"
	"restaurant-gateway/middleware/ratelimit/domain"
)

// Janelas/limites fixos dos presets quando o chamador passa zero.
const (
	DefaultWindow      = time.Minute
	DefaultMaxRequests = 100

	StrictWindow      = time.Minute
	StrictMaxRequests = 10

	LoginWindow      = 15 * time.Minute
	LoginMaxRequests = 5

	RegisterWindow      = time.Hour
	RegisterMaxRequests = 3
)

// Limiter é o ponto de construção das políticas de um processo.
// Todas as políticas criadas por ele compartilham o mesmo Store; os prefixos
// das chaves (ip:, user:, strict:, login:, register:) separam os contadores.
type Limiter struct {
	store    domain.Store
	defaults domain.Config
	stats    domain.StatsStore
	log      logger.Logger
	now      func() time.Time
}

type Option func(*Limiter)

// WithDefaults define janela e limite de ByIP/ByUser/New quando não informados.
func WithDefaults(window time.Duration, maxRequests int) Option {
	return func(l *Limiter) {
		if window > 0 {
			l.defaults.Window = window
		}
		if maxRequests > 0 {
			l.defaults.MaxRequests = maxRequests
		}
	}
}

func WithStats(s domain.StatsStore) Option {
	return func(l *Limiter) { l.stats = s }
}

func WithLogger(log logger.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock fixa o relógio usado em fail-open, Retry-After e eventos.
// O Store tem o próprio relógio.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewLimiter(store domain.Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:    store,
		defaults: domain.Config{Window: DefaultWindow, MaxRequests: DefaultMaxRequests},
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// New cria uma política. Janela/limite zerados herdam os defaults;
// keyFn nil usa MixedKey.
func (l *Limiter) New(cfg domain.Config, keyFn KeyFunc) *Policy {
	if cfg.Window <= 0 {
		cfg.Window = l.defaults.Window
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = l.defaults.MaxRequests
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if keyFn == nil {
		keyFn = MixedKey
	}
	return &Policy{
		cfg:   cfg,
		keyFn: keyFn,
		svc:   application.Service{Store: l.store, Config: cfg, Now: l.now},
		stats: l.stats,
		log:   l.log.With(map[string]any{"policy": cfg.Name}),
		now:   l.now,
	}
}

func (l *Limiter) ByIP(window time.Duration, maxRequests int) *Policy {
	return l.New(domain.Config{Name: "ip", Window: window, MaxRequests: maxRequests}, IPKey)
}

func (l *Limiter) ByUser(window time.Duration, maxRequests int) *Policy {
	return l.New(domain.Config{Name: "user", Window: window, MaxRequests: maxRequests}, UserKey)
}

func (l *Limiter) Strict(window time.Duration, maxRequests int) *Policy {
	return l.New(presetConfig("strict", window, maxRequests, StrictWindow, StrictMaxRequests), StrictKey)
}

func (l *Limiter) Login(window time.Duration, maxRequests int) *Policy {
	return l.New(presetConfig("login", window, maxRequests, LoginWindow, LoginMaxRequests), LoginKey)
}

func (l *Limiter) Register(window time.Duration, maxRequests int) *Policy {
	return l.New(presetConfig("register", window, maxRequests, RegisterWindow, RegisterMaxRequests), RegisterKey)
}

func presetConfig(name string, window time.Duration, maxRequests int, defWindow time.Duration, defMax int) domain.Config {
	if window <= 0 {
		window = defWindow
	}
	if maxRequests <= 0 {
		maxRequests = defMax
	}
	return domain.Config{Name: name, Window: window, MaxRequests: maxRequests}
}

// Stats é o retrato do Store compartilhado.
type Stats struct {
	Size      int    `json:"size"`
	HeapAlloc uint64 `json:"memoryUsage"`
}

func (l *Limiter) Stats() Stats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Stats{Size: l.store.Size(), HeapAlloc: ms.HeapAlloc}
}

// StartReporter loga periodicamente o número de chaves vivas até o ctx encerrar.
// A limpeza em si é feita pelo Store (timers + leitura preguiçosa).
func (l *Limiter) StartReporter(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				st := l.Stats()
				l.log.Debug("rate limit store size", map[string]any{"size": st.Size, "heap_alloc": st.HeapAlloc})
			}
		}
	}()
}
