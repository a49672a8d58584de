package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"orthocode/internal/config"
	"orthocode/internal/port"
)

// slidingWindowScript evicts expired members, then admits by adding a member only
// while the set holds fewer than ARGV[3] entries. Runs atomically on the server.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
if redis.call('ZCARD', key) >= limit then
  return 0
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return 1
`)

// RedisSlidingWindow shares one admission window across every replica that
// points at the same Redis key.
type RedisSlidingWindow struct {
	client redis.UniversalClient
	key    string
	limit  int
	window time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisSlidingWindow.
type RedisOption func(*RedisSlidingWindow)

// WithRedisClock overrides the time source used to score members (for testing).
func WithRedisClock(now func() time.Time) RedisOption {
	return func(r *RedisSlidingWindow) {
		r.now = now
	}
}

// NewRedisSlidingWindow creates a Redis-backed limiter on key.
func NewRedisSlidingWindow(client redis.UniversalClient, key string, limit int, window time.Duration, opts ...RedisOption) *RedisSlidingWindow {
	r := &RedisSlidingWindow{
		client: client,
		key:    key,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisSlidingWindow) Admit(ctx context.Context) (bool, error) {
	now := r.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, r.client, []string{r.key},
		now, r.window.Milliseconds(), r.limit, member).Int()
	if err != nil {
		return false, fmt.Errorf("evaluating rate limit script: %w", err)
	}
	return res == 1, nil
}

// Ping checks connectivity to Redis.
func (r *RedisSlidingWindow) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisSlidingWindow) Close() error {
	return r.client.Close()
}

// NewFromConfig builds the limiter selected by cfg.Backend.
func NewFromConfig(cfg *config.RateLimitConfig) (port.RateLimiter, error) {
	if cfg.Limit < 1 {
		return nil, fmt.Errorf("rate limit must be at least 1, got %d", cfg.Limit)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}

	switch cfg.Backend {
	case "", "memory":
		return NewSlidingWindow(cfg.Limit, cfg.Window), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisSlidingWindow(client, cfg.RedisKey, cfg.Limit, cfg.Window), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend: %s", cfg.Backend)
	}
}
