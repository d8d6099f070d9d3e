package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-gateway/middleware/auth/domain"
	"restaurant-gateway/middleware/auth/infra"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	bearerPrefix    = "Bearer "
)

// TokenConfig é a configuração explícita do TokenService (sem estado global).
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Users  domain.UserLookup
	// Now permite fixar o relógio em testes. Padrão time.Now.
	Now func() time.Time
}

// TokenService emite e verifica os tokens HS256 da aplicação.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	users     domain.UserLookup
	now       func() time.Time
	validator *jwt.Validator
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token service: secret is required")
	}
	if cfg.Users == nil {
		return nil, errors.New("token service: user lookup is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TTL,
		users:     cfg.Users,
		now:       cfg.Now,
		validator: jwt.NewValidator(jwt.WithTimeFunc(cfg.Now), jwt.WithExpirationRequired()),
	}, nil
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue monta header.payload.signature para o sujeito, com iat=agora e exp=iat+TTL.
// Só falha se a serialização falhar.
func (s *TokenService) Issue(sub domain.Subject) (string, error) {
	now := s.now().Truncate(time.Second)
	claims := domain.Claims{
		UserID:    sub.UserID,
		Email:     sub.Email,
		Role:      sub.Role,
		TenantID:  sub.TenantID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	header, err := infra.EncodeSegment(domain.DefaultHeader)
	if err != nil {
		return "", fmt.Errorf("encode header: %w", err)
	}
	payload, err := infra.EncodeSegment(claims)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	signingInput := header + "." + payload
	return signingInput + "." + infra.SignatureSegment(signingInput, s.secret), nil
}

// Verify valida o token e resolve a Identity do usuário ativo.
//
// Ordem das checagens: presença, prefixo Bearer opcional, estrutura, assinatura,
// expiração, usuário ativo. A expiração só é avaliada com assinatura válida.
// Toda falha é um *domain.Error; panics do lookup viram VERIFICATION_ERROR.
func (s *TokenService) Verify(ctx context.Context, token string) (id domain.Identity, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = domain.Identity{}, domain.NewError(domain.ErrCodeVerification, fmt.Errorf("panic: %v", r))
		}
	}()

	claims, err := s.Decode(token)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := s.users.LookupActiveUser(ctx, claims.UserID)
	if err != nil {
		return domain.Identity{}, domain.NewError(domain.ErrCodeVerification, err)
	}
	if !user.Active() {
		return domain.Identity{}, domain.NewError(domain.ErrCodeUserInactive, nil)
	}

	return domain.Identity{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: claims.TenantID,
	}, nil
}

// Decode faz todas as checagens locais (sem consultar usuário) e devolve as claims.
func (s *TokenService) Decode(token string) (domain.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Claims{}, domain.NewError(domain.ErrCodeMissingToken, nil)
	}

	clean := strings.TrimSpace(strings.TrimPrefix(token, bearerPrefix))
	if clean == "" {
		return domain.Claims{}, domain.NewError(domain.ErrCodeInvalidTokenFormat, nil)
	}

	parts := strings.Split(clean, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return domain.Claims{}, domain.NewError(domain.ErrCodeInvalidTokenStructure, nil)
	}

	if !infra.VerifySignature(parts[0]+"."+parts[1], parts[2], s.secret) {
		return domain.Claims{}, domain.NewError(domain.ErrCodeInvalidSignature, nil)
	}

	var claims domain.Claims
	if err := infra.DecodeSegment(parts[1], &claims); err != nil {
		return domain.Claims{}, domain.NewError(domain.ErrCodeVerification, fmt.Errorf("decode payload: %w", err))
	}

	if err := s.validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, domain.NewError(domain.ErrCodeTokenExpired, err)
		}
		return domain.Claims{}, domain.NewError(domain.ErrCodeVerification, err)
	}
	return claims, nil
}

// Optional tenta verificar quando há credencial. Qualquer falha vira "sem identidade".
func (s *TokenService) Optional(ctx context.Context, token string) *domain.Identity {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	id, err := s.Verify(ctx, token)
	if err != nil {
		return nil
	}
	return &id
}
