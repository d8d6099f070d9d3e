package auth

import (
	"net/http"

	"restaurant-gateway/middleware/reqctx"
)

// Headers de identidade repassados ao upstream.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
	HeaderTenantID  = "X-Tenant-Id"
)

var identityHeaders = []string{HeaderUserID, HeaderUserEmail, HeaderUserRole, HeaderTenantID}

// ForwardIdentity remove os headers de identidade vindos do cliente e, se o
// request foi autenticado, reescreve-os a partir da identidade verificada.
func ForwardIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.Clone(r.Context())
		for _, h := range identityHeaders {
			r.Header.Del(h)
		}

		if id := reqctx.Identity(r.Context()); id != nil {
			r.Header.Set(HeaderUserID, id.ID)
			r.Header.Set(HeaderUserEmail, id.Email)
			r.Header.Set(HeaderUserRole, id.Role)
			if id.HasTenant() {
				r.Header.Set(HeaderTenantID, id.TenantID)
			}
		}
		next.ServeHTTP(w, r)
	})
}
