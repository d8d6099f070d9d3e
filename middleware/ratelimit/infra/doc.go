// Package infra implementa os contratos de domain em memória e em Redis.
//
// MemoryStore é o store da janela fixa; BucketStore os token buckets do
// BurstMiddleware; ChanPool o semáforo de concorrência; MemoryStatsStore e
// RedisStatsStore os contadores de decisão.
package infra
