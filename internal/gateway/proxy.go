package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"restaurant-gateway/internal/logger"
	"restaurant-gateway/middleware/auth"
	"restaurant-gateway/middleware/reqctx"
	"restaurant-gateway/middleware/respond"
)

// NewProxy cria o reverse proxy para o upstream. Os headers de identidade são
// sempre reescritos pelo gateway antes de sair (auth.ForwardIdentity).
func NewProxy(target *url.URL, log logger.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("proxy error", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": reqctx.RequestID(r.Context()),
			"err":        err,
		})
		respond.Error(w, http.StatusBadGateway, "BAD_GATEWAY", "Upstream unavailable")
	}
	return auth.ForwardIdentity(proxy)
}
