package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// Record é o contador de uma chave dentro da janela fixa.
//
// Invariante: Count >= 1 para qualquer registro existente. Chave sem registro
// equivale a Count == 0.
type Record struct {
	Key     Key
	Count   int
	ResetAt time.Time
}

// Expired indica se a janela do registro já terminou em `now`.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ResetAt)
}

// Store é o contador por chave com expiração por entrada.
//
// A implementação em memória vive em infra; uma implementação em rede pode
// substituí-la sem mexer na regra de decisão.
type Store interface {
	// Get retorna o registro ou ok=false se ausente/expirado.
	Get(key Key) (Record, bool)
	// Increment cria {Count:1, ResetAt: now+window} se ausente/expirado;
	// caso contrário soma 1 preservando o ResetAt original (janela fixa).
	Increment(key Key, window time.Duration) Record
	Delete(key Key)
	Clear()
	Size() int
}

// Config descreve uma política: janela, limite e nome (usado em logs/estatísticas).
type Config struct {
	Name        string
	Window      time.Duration
	MaxRequests int
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// FailOpen marca decisões liberadas porque a derivação de chave falhou.
	FailOpen bool
}

// RetryAfter é o tempo até o fim da janela, arredondado para cima em segundos.
// Só faz sentido quando a decisão bloqueou.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	secs := (wait + time.Second - 1) / time.Second
	return secs * time.Second
}

// Limiter representa algo que pode decidir se uma ação é permitida agora
// (token bucket do BurstMiddleware).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP).
type LimiterStore interface {
	Get(Key) Limiter
}
