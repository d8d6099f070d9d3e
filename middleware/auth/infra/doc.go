// Package infra contém as peças concretas da autenticação: o codec do token
// (base64url + HMAC-SHA256) e as consultas de usuário ativo (memória e Postgres
// via pgx).
package infra
