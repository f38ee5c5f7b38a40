// Package cache is the cache-aside layer in front of the habit, day and user
// stores. Entries live in Redis under a configurable prefix and are wrapped
// in a versioned envelope so a payload written by an older build reads as a
// miss instead of a decode error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotVersion must be bumped whenever a snapshot struct changes shape.
const snapshotVersion = 1

const scanBatch = 100

type envelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

// Cache provides caching operations using Redis.
type Cache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	version int
}

func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		version: snapshotVersion,
	}
}

// Get decodes the entry at key into dest and reports whether it was found.
// A missing key or an envelope of another version is a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		cacheErrors.WithLabelValues("get").Inc()
		return false, fmt.Errorf("cache get error: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		cacheErrors.WithLabelValues("decode").Inc()
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	if env.V != c.version {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		cacheErrors.WithLabelValues("decode").Inc()
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

// Set stores value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

func (c *Cache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		cacheErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("cache marshal error: %w", err)
	}
	payload, err := json.Marshal(envelope{V: c.version, Data: data})
	if err != nil {
		cacheErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, payload, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Delete removes the given keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// DeletePattern removes every key matching a glob pattern and returns how
// many were deleted. Literal parts of the pattern must already be escaped
// with escapePattern.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	fullPattern := escapePattern(c.prefix) + pattern

	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, fullPattern, scanBatch).Result()
		if err != nil {
			cacheErrors.WithLabelValues("scan").Inc()
			return deleted, fmt.Errorf("cache scan error: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				cacheErrors.WithLabelValues("delete").Inc()
				return deleted, fmt.Errorf("cache delete error: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted, nil
}

// Ping checks if the Redis connection is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

var globReplacer = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

// escapePattern quotes glob metacharacters so s matches only itself in a
// SCAN MATCH pattern.
func escapePattern(s string) string {
	return globReplacer.Replace(s)
}
