package infra

import (
	"context"
	"strings"
	"sync"

	"restaurant-gateway/middleware/auth/domain"
)

// MemoryUsers é um UserLookup em memória (dev, testes e tokenctl).
type MemoryUsers struct {
	mu   sync.RWMutex
	byID map[string]domain.User
}

func NewMemoryUsers(users ...domain.User) *MemoryUsers {
	m := &MemoryUsers{byID: make(map[string]domain.User, len(users))}
	for _, u := range users {
		m.Put(u)
	}
	return m
}

// Put cria ou substitui o usuário. Status vazio vira active.
func (m *MemoryUsers) Put(u domain.User) {
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[strings.TrimSpace(u.ID)] = u
}

func (m *MemoryUsers) SetStatus(id string, status domain.UserStatus) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return false
	}
	u.Status = status
	m.byID[id] = u
	return true
}

func (m *MemoryUsers) LookupActiveUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[strings.TrimSpace(id)]
	if !ok || !u.Active() {
		return nil, nil
	}
	return &u, nil
}
