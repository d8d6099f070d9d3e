package domain

import "context"

const (
	RoleUser        = "user"
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "super_admin"
	RoleTenantAdmin = "tenant_admin"
)

// Identity é o principal autenticado de um request. Não é persistido.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
}

func (i Identity) HasTenant() bool { return i.TenantID != "" }

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User é a visão mínima do usuário que a verificação precisa.
type User struct {
	ID     string
	Email  string
	Role   string
	Status UserStatus
}

func (u *User) Active() bool { return u != nil && u.Status == UserStatusActive }

// UserLookup resolve o estado atual de um usuário.
// Retorna (nil, nil) quando o usuário não existe ou não está ativo;
// erro só para falhas do backend.
type UserLookup interface {
	LookupActiveUser(ctx context.Context, id string) (*User, error)
}

// UserLookupFunc adapta uma função a UserLookup.
type UserLookupFunc func(ctx context.Context, id string) (*User, error)

func (f UserLookupFunc) LookupActiveUser(ctx context.Context, id string) (*User, error) {
	return f(ctx, id)
}
