// Package application contém os casos de uso de autenticação (TokenService:
// emissão e verificação) e de autorização (Guard), sem net/http.
package application
