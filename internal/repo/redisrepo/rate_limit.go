// Package redisrepo holds the Redis-backed counters shared across replicas.
package redisrepo

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type rateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) RateLimiter {
	return &rateLimiter{client: client}
}

// Allow counts one attempt against the key and reports whether it is still
// under the limit for the window. On Redis errors the request is allowed
// (fail open): a broken limiter must not lock everyone out of clocking in.
func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	// Hash the key so raw client IPs never land in Redis.
	hashed := fmt.Sprintf("ratelimit:%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := r.client.Incr(ctx, hashed).Result()
	if err != nil {
		return true, nil
	}
	if count == 1 {
		r.client.Expire(ctx, hashed, window)
	}

	return count <= int64(limit), nil
}

func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
