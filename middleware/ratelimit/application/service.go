package application

import (
	"time"

	"restaurant-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de janela fixa de uma política.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store  domain.Store
	Config domain.Config
	Now    func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Decide incrementa o contador da chave e compara com o limite.
// A rejeição é recalculada a cada hit (count > max); não existe estado "bloqueado".
func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return s.FailOpen()
	}

	rec := s.Store.Increment(key, s.Config.Window)
	remaining := s.Config.MaxRequests - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Decision{
		Allowed:   rec.Count <= s.Config.MaxRequests,
		Limit:     s.Config.MaxRequests,
		Remaining: remaining,
		ResetAt:   rec.ResetAt,
	}
}

// FailOpen é a decisão usada quando o próprio limiter falhou (ex: derivação de chave).
// Disponibilidade acima de limitação estrita.
func (s Service) FailOpen() domain.Decision {
	return domain.Decision{
		Allowed:   true,
		Limit:     s.Config.MaxRequests,
		Remaining: s.Config.MaxRequests,
		ResetAt:   s.now().Add(s.Config.Window),
		FailOpen:  true,
	}
}
