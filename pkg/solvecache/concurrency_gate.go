package solvecache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConcurrencyGate bounds how many solves run at once across replicas using
// a Redis counter. When client is nil (Redis unconfigured or unreachable
// at startup) every Acquire call succeeds immediately: the gate degrades to
// "unbounded" rather than blocking requests on an absent dependency.
type ConcurrencyGate struct {
	client        *redis.Client
	key           string
	maxConcurrent int
}

// NewConcurrencyGate builds a gate. Pass a nil client to disable it.
func NewConcurrencyGate(client *redis.Client, maxConcurrent int) *ConcurrencyGate {
	return &ConcurrencyGate{client: client, key: "scheduler:inflight", maxConcurrent: maxConcurrent}
}

// NewRedisClient dials addr and verifies connectivity with a ping. Returns
// a nil client (not an error) when addr is empty, so callers can always
// pass the result to NewConcurrencyGate.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// Acquire increments the in-flight counter and reports whether the caller
// may proceed. The caller must call the returned release func exactly once
// when done, whether or not acquisition succeeded.
func (g *ConcurrencyGate) Acquire(ctx context.Context) (acquired bool, release func()) {
	if g == nil || g.client == nil || g.maxConcurrent <= 0 {
		return true, func() {}
	}

	count, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return true, func() {}
	}
	if int(count) > g.maxConcurrent {
		g.client.Decr(ctx, g.key)
		return false, func() {}
	}
	return true, func() { g.client.Decr(ctx, g.key) }
}
