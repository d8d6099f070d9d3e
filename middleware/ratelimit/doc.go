// Package ratelimit fornece os adapters HTTP (net/http) de rate limit e limite de concorrência.
//
// Camadas:
//
//   - domain: contratos e tipos (Key, Record, Store, Decision, StatsStore), sem net/http
//   - application: regra de janela fixa (com fail-open) e aquisição de vagas com timeout
//   - infra: MemoryStore (janela fixa com expiração), BucketStore (token bucket),
//     semáforo e stores de estatística (memória e Redis)
//   - ratelimit (este pacote): Limiter + presets, derivação de chave, headers e status
//
// Fluxo de uma política:
//
//  1. Deriva a chave do request (ip:, user:, strict:, login:, register:, mixed:)
//  2. Incrementa o contador da janela e decide (count <= max)
//  3. Escreve X-RateLimit-Limit/Remaining/Reset
//  4. Bloqueado: 429 com envelope JSON e Retry-After; liberado: chama o próximo handler
//
// Se a derivação da chave falhar a política libera o request e loga o erro.
//
// BurstMiddleware (token bucket por IP) e ConcurrencyMiddleware (503 quando não há vaga)
// são proteções de processo que rodam antes das políticas.
package ratelimit
