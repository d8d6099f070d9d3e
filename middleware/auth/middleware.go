package auth

import (
	"context"
	"net/http"

	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/auth/application"
	"restaurant-gateway/middleware/auth/domain"
	"restaurant-gateway/middleware/reqctx"
	"restaurant-gateway/middleware/respond"
)

// Verifier resolve a identidade de um token (application.TokenService).
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

type Options struct {
	Verifier Verifier
	// Guard zero usa application.NewGuard().
	Guard  application.Guard
	Logger logger.Logger
}

type Middleware struct {
	verifier Verifier
	guard    application.Guard
	log      logger.Logger
}

func New(opts Options) *Middleware {
	if opts.Guard.GlobalRoles == nil && opts.Guard.TenantRole == "" {
		opts.Guard = application.NewGuard()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Middleware{verifier: opts.Verifier, guard: opts.Guard, log: opts.Logger}
}

// Authenticate exige um token válido. Falha responde 401 com o código da falha
// e o próximo handler não roda.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.verifier.Verify(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			m.logFailure(r, err)
			respond.AuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(reqctx.WithIdentity(r.Context(), id)))
	})
}

// OptionalAuthenticate tenta verificar quando há credencial e nunca rejeita:
// qualquer falha segue sem identidade.
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.verifier.Verify(r.Context(), header)
		if err != nil {
			m.logFailure(r, err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(reqctx.WithIdentity(r.Context(), id)))
	})
}

// RequireRoles responde 403 se o papel da identidade não estiver em roles.
// Deve rodar depois de Authenticate.
func (m *Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := m.guard.Authorize(reqctx.Identity(r.Context()), roles...); err != nil {
				respond.AuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenantAccess aplica a regra de recursos por restaurante.
func (m *Middleware) RequireTenantAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.guard.AuthorizeResourceAccess(reqctx.Identity(r.Context())); err != nil {
			respond.AuthError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logFailure: VERIFICATION_ERROR é falha nossa (lookup, panic) e vai como error;
// o resto é erro do cliente.
func (m *Middleware) logFailure(r *http.Request, err error) {
	fields := map[string]any{
		"code":       string(domain.CodeOf(err)),
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": reqctx.RequestID(r.Context()),
	}
	if domain.CodeOf(err) == domain.ErrCodeVerification {
		fields["err"] = err
		m.log.Error("token verification error", fields)
		return
	}
	m.log.Debug("authentication failed", fields)
}
