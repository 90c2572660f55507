package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auroma-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCreatorCode returns a cached creator code. The second return value is
// false on a cache miss.
func (c *Client) GetCreatorCode(ctx context.Context, code string) (*models.CreatorCode, bool, error) {
	raw, err := c.rdb.Get(ctx, creatorCodeKey(code)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cc models.CreatorCode
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached creator code: %w", err)
	}
	return &cc, true, nil
}

// SetCreatorCode caches a creator code with a TTL. Codes can be deactivated
// by admins, so the TTL bounds how long a stale code keeps validating.
func (c *Client) SetCreatorCode(ctx context.Context, cc *models.CreatorCode, ttl time.Duration) error {
	raw, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("failed to encode creator code: %w", err)
	}
	return c.rdb.Set(ctx, creatorCodeKey(cc.Code), raw, ttl).Err()
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("idempotency:%s", key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

func creatorCodeKey(code string) string {
	return fmt.Sprintf("creatorcode:%s", code)
}
