package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/httprate"
	httprateredis "github.com/go-chi/httprate-redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// failOpenCounter 计数失败时记录告警并放行请求。
type failOpenCounter struct {
	httprate.LimitCounter
	logger *zap.Logger
}

func (c *failOpenCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c *failOpenCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	if err := c.LimitCounter.IncrementBy(key, currentWindow, amount); err != nil {
		c.logger.Warn("rate limit counter failed, allowing request", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *failOpenCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	curr, prev, err := c.LimitCounter.Get(key, currentWindow, previousWindow)
	if err != nil {
		c.logger.Warn("rate limit counter failed, allowing request", zap.String("key", key), zap.Error(err))
		return 0, 0, nil
	}
	return curr, prev, nil
}

// RedisCounter shares rate limit windows across instances through Redis.
type RedisCounter struct {
	httprate.LimitCounter
	client *redis.Client
}

// NewRedisCounter parses redisURL, pings the server and wraps the client in a
// httprate counter. While Redis is unreachable the counter falls back to memory.
func NewRedisCounter(ctx context.Context, redisURL string, logger *zap.Logger) (*RedisCounter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	counter, err := httprateredis.NewRedisLimitCounter(&httprateredis.Config{
		Client:           client,
		PrefixKey:        "ratelimit",
		FallbackDisabled: false,
		OnFallbackChange: func(activated bool) {
			logger.Warn("rate limit redis fallback changed", zap.Bool("in_memory", activated))
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create Redis rate limit counter: %w", err)
	}

	return &RedisCounter{LimitCounter: counter, client: client}, nil
}

func (c *RedisCounter) Close() error {
	return c.client.Close()
}
