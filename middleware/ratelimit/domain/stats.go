package domain

import (
	"context"
	"time"
)

// StatsEvent é uma decisão de política, registrada depois do incremento.
// Key e Path têm cardinalidade alta: stores persistentes só devem gravar Key sob opt-in.
type StatsEvent struct {
	Policy  string
	Key     Key
	Allowed bool
	Method  string
	Path    string
	At      time.Time
}

// Route é o agrupamento usado nos contadores por rota ("POST /auth/login").
func (ev StatsEvent) Route() string {
	if ev.Method == "" {
		return ev.Path
	}
	return ev.Method + " " + ev.Path
}

// StatsStore recebe os eventos. Falha aqui nunca bloqueia o request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) Add(allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// StatsSnapshot é a leitura agregada exposta na rota administrativa.
type StatsSnapshot struct {
	Total    Counters            `json:"total"`
	ByPolicy map[string]Counters `json:"byPolicy"`
}

type StatsReader interface {
	Snapshot(ctx context.Context) (StatsSnapshot, error)
}
