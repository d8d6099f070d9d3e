// Package respond escreve os envelopes JSON de erro e os headers de rate limit.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	authdomain "restaurant-gateway/middleware/auth/domain"
	rldomain "restaurant-gateway/middleware/ratelimit/domain"
)

const (
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// ErrorBody é o envelope de falha devolvido ao cliente.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

// RateLimitBody acrescenta o estado da janela ao envelope (429).
type RateLimitBody struct {
	ErrorBody
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"resetTime"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, code, msg string) {
	JSON(w, status, newErrorBody(code, msg, time.Now()))
}

// AuthError traduz um erro de autenticação/autorização: 401 ou 403 conforme o código.
// A causa interna nunca vai para o cliente, só a mensagem do código.
func AuthError(w http.ResponseWriter, err error) {
	code := authdomain.CodeOf(err)
	msg := code.Message()
	var e *authdomain.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}

	status := http.StatusUnauthorized
	if code.Authorization() {
		status = http.StatusForbidden
	}
	Error(w, status, string(code), msg)
}

// RateLimitHeaders escreve os headers da decisão. Retry-After só em rejeição.
func RateLimitHeaders(w http.ResponseWriter, d rldomain.Decision, now time.Time) {
	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(d.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(d.Remaining))
	h.Set(HeaderReset, strconv.FormatInt(resetUnix(d.ResetAt), 10))
	if !d.Allowed {
		h.Set(HeaderRetryAfter, strconv.FormatInt(int64(d.RetryAfter(now)/time.Second), 10))
	}
}

// TooManyRequests responde 429 com headers e o estado da janela no corpo.
func TooManyRequests(w http.ResponseWriter, d rldomain.Decision, now time.Time) {
	RateLimitHeaders(w, d, now)
	JSON(w, http.StatusTooManyRequests, RateLimitBody{
		ErrorBody: newErrorBody(CodeTooManyRequests, "Too many requests, please try again later", now),
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetTime: d.ResetAt.UTC().Format(time.RFC3339),
	})
}

// resetUnix arredonda o instante de reset para cima em segundos unix.
func resetUnix(t time.Time) int64 {
	ms := t.UnixMilli()
	return (ms + 999) / 1000
}

func newErrorBody(code, msg string, now time.Time) ErrorBody {
	return ErrorBody{
		Success:   false,
		Error:     msg,
		Code:      code,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
