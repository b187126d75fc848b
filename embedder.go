package chromalens

import (
	"context"
	"log/slog"
)

// Embedder turns texts into embedding vectors. Implementations must return
// one vector per input text, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingCache stores previously computed vectors. A miss is reported as
// (nil, false, nil); cache failures must not fail the embedding.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Put(ctx context.Context, text string, vector []float32) error
}

// cachedEmbedder consults the cache first and only embeds the misses,
// preserving input order.
type cachedEmbedder struct {
	inner  Embedder
	cache  EmbeddingCache
	logger *slog.Logger
}

func (c *cachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		vec, ok, err := c.cache.Get(ctx, text)
		if err != nil {
			c.logger.Warn("embedding cache read failed", "error", err)
		}
		if ok && err == nil {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}
	vecs, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := c.cache.Put(ctx, texts[i], vecs[j]); err != nil {
			c.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return out, nil
}
