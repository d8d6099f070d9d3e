package application

import (
	"context"
	"errors"
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"
)

// ErrSaturated: nenhuma vaga livre dentro do prazo de aquisição.
var ErrSaturated = errors.New("concurrency limit reached")

// ConcurrencyService aplica o prazo de aquisição sobre um SlotPool.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

func noRelease() {}

// Acquire devolve o release da vaga obtida. AcquireTimeout <= 0 espera pelo
// ctx do request. Com erro, release é nil.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return noRelease, nil
	}
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	if release, ok := s.Pool.Acquire(ctx); ok {
		return release, nil
	}
	return nil, ErrSaturated
}
