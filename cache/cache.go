// Package cache wraps the shared Redis client with the read-through helpers
// the repositories and the confirmation code store use.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// scanBatch is how many keys DeleteAll removes per round trip.
const scanBatch = 100

type Cache struct {
	client *redis.Client
}

// NewCache creates a new Cache instance, ensuring that the client is not nil.
func NewCache(client *redis.Client) (*Cache, error) {
	if client == nil {
		return nil, errors.New("Redis client is not initialized")
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get returns the cached value, or "" when the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// SetJSON stores value encoded as JSON.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.Set(ctx, key, payload, expiration)
}

// GetJSON decodes the entry at key into dest. It reports false on a miss.
// An entry that no longer decodes is deleted and treated as a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.Get(ctx, key)
	if err != nil || raw == "" {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		if delErr := c.Delete(ctx, key); delErr != nil {
			return false, delErr
		}
		return false, nil
	}
	return true, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeleteAll removes every key matching pattern. Keys are collected with SCAN
// first and deleted in batches afterwards, so the cursor never walks a keyspace
// that is shrinking under it.
func (c *Cache) DeleteAll(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := start + scanBatch
		if end > len(keys) {
			end = len(keys)
		}
		if err := c.DeleteBatch(ctx, keys[start:end]...); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) DeleteBatch(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
