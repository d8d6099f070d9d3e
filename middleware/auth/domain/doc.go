// Package domain define os tipos de autenticação e autorização: Claims do
// token, Identity verificada, o contrato de consulta de usuário ativo e a
// taxonomia de erros com códigos estáveis.
//
// Não depende de net/http.
package domain
