package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrLockNotHeld is returned when releasing a lock owned by someone else.
var ErrLockNotHeld = errors.New("lock release failed: not the lock owner")

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, config RedisConfig) (*redis.Client, error) {
	if config.URL == "" {
		return nil, errors.New("redis URL is not set")
	}

	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = config.PoolSize
	opt.MinIdleConns = config.MinIdleConns
	opt.DialTimeout = config.DialTimeout
	opt.ReadTimeout = config.ReadTimeout
	opt.MaxRetries = config.MaxRetries

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	log.Printf("Redis client initialized with configuration: PoolSize=%d, MinIdleConns=%d, DialTimeout=%s, ReadTimeout=%s, MaxRetries=%d",
		config.PoolSize, config.MinIdleConns, config.DialTimeout.String(), config.ReadTimeout.String(), config.MaxRetries)
	return client, nil
}

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisLocker hands out SETNX based locks shared by every instance of the service.
type RedisLocker struct {
	client  *redis.Client
	release *redis.Script
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, release: redis.NewScript(releaseLockScript)}
}

// Acquire tries once to take the lock. It reports false when another holder owns it.
func (l *RedisLocker) Acquire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if l.client == nil {
		return false, errors.New("Redis client is not initialized")
	}
	return l.client.SetNX(ctx, key, value, ttl).Result()
}

// Release drops the lock if value still owns it.
func (l *RedisLocker) Release(ctx context.Context, key, value string) error {
	if l.client == nil {
		return errors.New("Redis client is not initialized")
	}

	result, err := l.release.Run(ctx, l.client, []string{key}, value).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// MonitorRedisPool logs the connection pool statistics for monitoring
func MonitorRedisPool(client *redis.Client) {
	stats := client.PoolStats()
	log.Printf("Redis pool stats: Total: %d, Idle: %d, Stale: %d", stats.TotalConns, stats.IdleConns, stats.StaleConns)
}
