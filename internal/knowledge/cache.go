package knowledge

import (
	"context"
	"fmt"

	"fjacquet/finance-advisor/internal/aiclient"
	"fjacquet/finance-advisor/internal/logging"

	"github.com/dgraph-io/ristretto"
)

// CachedEmbedder memoizes query embeddings. Repeated chat questions and
// knowledge searches skip the embedding call.
type CachedEmbedder struct {
	inner  aiclient.Embedder
	cache  *ristretto.Cache
	logger logging.Logger
}

// NewCachedEmbedder wraps inner with a cache of up to maxItems vectors.
func NewCachedEmbedder(inner aiclient.Embedder, maxItems int64, logger logging.Logger) (*CachedEmbedder, error) {
	if maxItems < 1 {
		return nil, fmt.Errorf("embedding cache size must be positive, got %d", maxItems)
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache, logger: logger}, nil
}

func (c *CachedEmbedder) Name() string { return c.inner.Name() }

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.inner.Name() + "\x00" + text
	if v, ok := c.cache.Get(key); ok {
		if vec, ok := v.([]float32); ok {
			return append([]float32(nil), vec...), nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]float32(nil), vec...), 1)
	return vec, nil
}

// Wait blocks until pending cache writes are visible.
func (c *CachedEmbedder) Wait() { c.cache.Wait() }

// Close releases the cache.
func (c *CachedEmbedder) Close() { c.cache.Close() }
