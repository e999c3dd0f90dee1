package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// SetJSON stores value under key as JSON.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

// GetJSON decodes the value under key into dest. It reports false when the
// key does not exist.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// TrackKey records member at the head of the list at listKey and evicts the
// oldest members beyond max, deleting their values.
func (c *Client) TrackKey(ctx context.Context, listKey, member string, max int) error {
	if err := c.rdb.LRem(ctx, listKey, 0, member).Err(); err != nil {
		return fmt.Errorf("failed to track %s: %w", member, err)
	}
	if err := c.rdb.LPush(ctx, listKey, member).Err(); err != nil {
		return fmt.Errorf("failed to track %s: %w", member, err)
	}

	evicted, err := c.rdb.LRange(ctx, listKey, int64(max), -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", listKey, err)
	}
	if len(evicted) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, evicted...).Err(); err != nil {
		return fmt.Errorf("failed to evict keys: %w", err)
	}
	return c.rdb.LTrim(ctx, listKey, 0, int64(max)-1).Err()
}

// DeleteTracked deletes every key recorded in listKey and the list itself.
func (c *Client) DeleteTracked(ctx context.Context, listKey string) error {
	keys, err := c.rdb.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", listKey, err)
	}
	return c.rdb.Del(ctx, append(keys, listKey)...).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
