// Package redis implements the resolution cache on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const keyPrefix = "link:"

type Cache struct {
	client *goredis.Client
}

func New(client *goredis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, code string) (string, error) {
	const op = "adapter.cache.redis.Cache.Get"

	val, err := c.client.Get(ctx, keyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrCacheMiss)
		}

		return "", fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	return val, nil
}

func (c *Cache) Set(ctx context.Context, code, originalURL string, ttl time.Duration) error {
	const op = "adapter.cache.redis.Cache.Set"

	if err := c.client.Set(ctx, keyPrefix+code, originalURL, ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, code string) error {
	const op = "adapter.cache.redis.Cache.Delete"

	if err := c.client.Del(ctx, keyPrefix+code).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete key: %w", op, err)
	}

	return nil
}
