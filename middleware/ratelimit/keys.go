package ratelimit

import (
	"net/http"
	"strings"

	"restaurant-gateway/middleware/reqctx"
)

// KeyFunc deriva a chave de contagem do request.
// Erro (ou panic) faz a política liberar o request (fail-open).
type KeyFunc func(r *http.Request) (string, error)

// fallbackIP é usado quando nenhum header de proxy identifica o cliente.
const fallbackIP = "127.0.0.1"

// ClientIP extrai o IP do cliente dos headers de proxy, nesta ordem:
// primeiro endereço do X-Forwarded-For, X-Real-IP, CF-Connecting-IP.
// Sem nenhum deles devolve 127.0.0.1 (RemoteAddr não é consultado).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	return fallbackIP
}

// userID devolve o id da identidade verificada no contexto, ou "".
func userID(r *http.Request) string {
	if id := reqctx.Identity(r.Context()); id != nil {
		return id.ID
	}
	return ""
}

func IPKey(r *http.Request) (string, error) {
	return "ip:" + ClientIP(r), nil
}

// UserKey usa o usuário autenticado; anônimo cai na chave por IP.
func UserKey(r *http.Request) (string, error) {
	if uid := userID(r); uid != "" {
		return "user:" + uid, nil
	}
	return IPKey(r)
}

// StrictKey conta por sujeito + método + path.
func StrictKey(r *http.Request) (string, error) {
	subject := userID(r)
	if subject == "" {
		subject = "ip:" + ClientIP(r)
	}
	return "strict:" + subject + ":" + r.Method + ":" + r.URL.Path, nil
}

// LoginKey conta por (IP, email da query). Sem email usa "unknown".
func LoginKey(r *http.Request) (string, error) {
	email := r.URL.Query().Get("email")
	if email == "" {
		email = "unknown"
	}
	return "login:" + ClientIP(r) + ":" + email, nil
}

func RegisterKey(r *http.Request) (string, error) {
	return "register:" + ClientIP(r), nil
}

// MixedKey é a chave padrão de políticas sem KeyFunc: usuário + IP quando
// autenticado, senão só IP.
func MixedKey(r *http.Request) (string, error) {
	ip := ClientIP(r)
	if uid := userID(r); uid != "" {
		return "mixed:" + uid + ":" + ip, nil
	}
	return "ip:" + ip, nil
}
