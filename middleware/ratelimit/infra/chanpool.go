package infra

import (
	"context"
	"sync"
)

// ChanPool é o SlotPool do gateway: semáforo sobre channel bufferizado.
type ChanPool struct {
	slots chan struct{}
}

func NewChanPool(capacity int) *ChanPool {
	if capacity < 1 {
		capacity = 1
	}
	return &ChanPool{slots: make(chan struct{}, capacity)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	// ctx já cancelado não pega vaga, mesmo com o pool livre
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.slots <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.slots }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

// InUse é o número de vagas ocupadas neste instante.
func (p *ChanPool) InUse() int { return len(p.slots) }

func (p *ChanPool) Cap() int { return cap(p.slots) }
