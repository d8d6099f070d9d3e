// Package domain reúne os tipos do rate limit sem dependência de HTTP:
// Config, Record e Decision da janela fixa, o contrato Store, o token bucket
// opcional (Limiter/LimiterStore), SlotPool e os eventos de estatística.
package domain
