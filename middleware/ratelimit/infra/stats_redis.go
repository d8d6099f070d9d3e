package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const (
	fieldAllowed = "allowed"
	fieldDenied  = "denied"
)

// RedisStatsStore persiste os contadores de decisão em hashes Redis,
// compartilhados entre réplicas do gateway.
//
// Chaves, com prefix padrão "ratelimit:stats":
//
//	<prefix>:total                   allowed / denied
//	<prefix>:policies                set com os nomes de política vistos
//	<prefix>:policy:<name>           allowed / denied
//	<prefix>:route                   "<METHOD path>|allowed" / "|denied"
//	<prefix>:minute:<yyyymmddhhmm>   allowed / denied, expira em ttl
//	<prefix>:key:<key>               allowed / denied, só com WithStatsTrackKeys
type RedisStatsStore struct {
	rdb       redis.Cmdable
	prefix    string
	ttl       time.Duration
	perMinute bool
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// WithStatsTTL define a expiração das séries por minuto e por chave.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket aceita "minute" (padrão) ou "none".
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.perMinute = strings.EqualFold(strings.TrimSpace(bucket), "minute")
	}
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:       rdb,
		prefix:    "ratelimit:stats",
		ttl:       24 * time.Hour,
		perMinute: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := fieldDenied
	if ev.Allowed {
		field = fieldAllowed
	}

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.key("total"), field, 1)

		if name := strings.TrimSpace(ev.Policy); name != "" {
			pipe.SAdd(ctx, s.key("policies"), name)
			pipe.HIncrBy(ctx, s.key("policy", name), field, 1)
		}
		if route := strings.TrimSpace(ev.Route()); route != "" {
			pipe.HIncrBy(ctx, s.key("route"), route+"|"+field, 1)
		}
		if s.perMinute {
			s.incrExpiring(ctx, pipe, s.key("minute", at.UTC().Format("200601021504")), field)
		}
		if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
			s.incrExpiring(ctx, pipe, s.key("key", k), field)
		}
		return nil
	})
	return err
}

func (s *RedisStatsStore) incrExpiring(ctx context.Context, pipe redis.Pipeliner, key, field string) {
	pipe.HIncrBy(ctx, key, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

// Snapshot lê o total e os contadores de cada política conhecida.
func (s *RedisStatsStore) Snapshot(ctx context.Context) (domain.StatsSnapshot, error) {
	snap := domain.StatsSnapshot{ByPolicy: map[string]domain.Counters{}}
	if s == nil || s.rdb == nil {
		return snap, nil
	}

	names, err := s.rdb.SMembers(ctx, s.key("policies")).Result()
	if err != nil {
		return snap, err
	}

	total := s.rdb.HGetAll(ctx, s.key("total"))
	if err := total.Err(); err != nil {
		return snap, err
	}
	snap.Total = countersFrom(total.Val())

	cmds := make(map[string]*redis.MapStringStringCmd, len(names))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range names {
			cmds[name] = pipe.HGetAll(ctx, s.key("policy", name))
		}
		return nil
	})
	if err != nil {
		return snap, err
	}
	for name, cmd := range cmds {
		snap.ByPolicy[name] = countersFrom(cmd.Val())
	}
	return snap, nil
}

func countersFrom(h map[string]string) domain.Counters {
	allowed, _ := strconv.ParseInt(h[fieldAllowed], 10, 64)
	denied, _ := strconv.ParseInt(h[fieldDenied], 10, 64)
	return domain.Counters{Allowed: allowed, Denied: denied}
}
