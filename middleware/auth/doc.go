// Package auth fornece os adapters HTTP (net/http) de autenticação e autorização.
//
// Camadas:
//
//   - domain: Claims, Identity, UserLookup e os códigos de erro
//   - application: TokenService (Issue/Verify) e Guard (papéis e tenant)
//   - infra: codec do token e lookups de usuário (memória, Postgres)
//   - auth (este pacote): middlewares que leem o Authorization, gravam a
//     identidade no reqctx e traduzem falhas em 401/403
package auth
