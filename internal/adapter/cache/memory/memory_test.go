package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss", func(t *testing.T) {
		cache := New(time.Minute)

		val, err := cache.Get(ctx, "abc123")

		assert.ErrorIs(t, err, entity.ErrCacheMiss)
		assert.Empty(t, val)
	})

	t.Run("set and get", func(t *testing.T) {
		cache := New(time.Minute)

		assert.NoError(t, cache.Set(ctx, "abc123", "https://example.com", time.Hour))

		val, err := cache.Get(ctx, "abc123")

		assert.NoError(t, err)
		assert.Equal(t, "https://example.com", val)
	})

	t.Run("expired entry", func(t *testing.T) {
		cache := New(time.Minute)

		assert.NoError(t, cache.Set(ctx, "abc123", "https://example.com", 10*time.Millisecond))

		assert.Eventually(t, func() bool {
			_, err := cache.Get(ctx, "abc123")
			return err != nil
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("delete", func(t *testing.T) {
		cache := New(time.Minute)

		assert.NoError(t, cache.Set(ctx, "abc123", "https://example.com", time.Hour))
		assert.NoError(t, cache.Delete(ctx, "abc123"))
		assert.NoError(t, cache.Delete(ctx, "abc123"))

		_, err := cache.Get(ctx, "abc123")

		assert.ErrorIs(t, err, entity.ErrCacheMiss)
	})
}
