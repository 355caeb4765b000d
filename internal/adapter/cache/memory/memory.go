// Package memory implements the resolution cache inside the process.
// Entries live for the TTL they were set with; expired entries read as misses.
package memory

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const defaultCleanupInterval = 10 * time.Minute

type Cache struct {
	store *gocache.Cache
}

// New returns an empty cache that purges expired entries every cleanupInterval.
func New(cleanupInterval time.Duration) *Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	return &Cache{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func (c *Cache) Get(_ context.Context, code string) (string, error) {
	const op = "adapter.cache.memory.Cache.Get"

	v, ok := c.store.Get(code)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, entity.ErrCacheMiss)
	}

	originalURL, ok := v.(string)
	if !ok {
		c.store.Delete(code)
		return "", fmt.Errorf("%s: %w", op, entity.ErrCacheMiss)
	}

	return originalURL, nil
}

func (c *Cache) Set(_ context.Context, code, originalURL string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	c.store.Set(code, originalURL, ttl)
	return nil
}

func (c *Cache) Delete(_ context.Context, code string) error {
	c.store.Delete(code)
	return nil
}
