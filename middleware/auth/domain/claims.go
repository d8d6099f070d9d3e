package domain

import "github.com/golang-jwt/jwt/v5"

// Header é o primeiro segmento do token. Sempre {"alg":"HS256","typ":"JWT"}.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var DefaultHeader = Header{Alg: "HS256", Typ: "JWT"}

// Claims é o payload do token. Imutável depois de emitido.
//
// Os nomes JSON seguem o formato já usado pelos clientes (userId, restaurantId).
// iat/exp são segundos unix.
type Claims struct {
	UserID    string           `json:"userId"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	TenantID  string           `json:"restaurantId,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

// Claims implementa jwt.Claims para reaproveitar jwt.Validator na checagem de exp.
var _ jwt.Claims = Claims{}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetSubject() (string, error)                  { return c.UserID, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// Subject é o que o chamador informa para emitir um token.
type Subject struct {
	UserID   string
	Email    string
	Role     string
	TenantID string
}
