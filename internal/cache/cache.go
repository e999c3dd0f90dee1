// Package cache holds the bounded caches used for expensive report
// computations. Entries are JSON encoded so the in-process and Redis
// implementations behave the same.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"business_manager/internal/redis"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate drops every entry. Order mutations call it after commit.
	Invalidate(ctx context.Context) error
}

// Key returns a stable SHA-256 key for the JSON encoding of parts.
func Key(namespace string, parts ...interface{}) (string, error) {
	raw, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

type memoryCache struct {
	entries *lru.Cache[string, []byte]
}

// NewMemory returns an in-process LRU cache holding at most size entries.
func NewMemory(size int) (Cache, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &memoryCache{entries: entries}, nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	c.entries.Add(key, raw)
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.entries.Purge()
	return nil
}

const redisIndexKey = "analytics:keys"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	size   int
}

// NewRedis returns a cache shared by every server process. At most size
// entries are kept; each also expires after ttl.
func NewRedis(client *redis.Client, ttl time.Duration, size int) Cache {
	return &redisCache{client: client, ttl: ttl, size: size}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return c.client.GetJSON(ctx, key, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	if err := c.client.SetJSON(ctx, key, value, c.ttl); err != nil {
		return err
	}
	return c.client.TrackKey(ctx, redisIndexKey, key, c.size)
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.client.DeleteTracked(ctx, redisIndexKey)
}
