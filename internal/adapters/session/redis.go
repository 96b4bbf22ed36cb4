// Package session provides the Redis-backed binding between a session key
// and a validated pass token.
package session

import (
	"context"
	"time"

	"github.com/guestgate/guestgate/internal/infrastructure/metrics"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "visitor:session:"

// RedisCache stores the token string a session resolved to, so repeat
// requests within one session skip re-consuming the pass. Only the token is
// cached; mutable pass fields always come from the database under the lock.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb}
}

func (r *RedisCache) Get(ctx context.Context, sessionKey string) (string, bool) {
	val, err := r.client.Get(ctx, keyPrefix+sessionKey).Result()
	if err != nil {
		metrics.SessionCacheOperations.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.SessionCacheOperations.WithLabelValues("hit").Inc()
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, sessionKey, token string, ttl time.Duration) {
	r.client.Set(ctx, keyPrefix+sessionKey, token, ttl)
}

func (r *RedisCache) Delete(ctx context.Context, sessionKey string) {
	r.client.Del(ctx, keyPrefix+sessionKey)
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
