package domain

import "context"

// SlotPool limita requisições em voo.
//
// Acquire bloqueia até haver vaga ou o ctx encerrar (ok=false). O release
// devolvido pode ser chamado mais de uma vez; só a primeira chamada libera.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
	Cap() int
}
