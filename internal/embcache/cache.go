// Package embcache stores embedding vectors in Redis, keyed by a digest of
// the source text. It satisfies the SDK's EmbeddingCache interface.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/rueidis"
)

const keyPrefix = "chromalens:emb_cache:"

// DefaultTTL bounds how long a cached vector survives. Embeddings for the
// same text and model never change, the TTL only caps memory usage.
const DefaultTTL = 7 * 24 * time.Hour

// store is the consumer interface over the key-value backend.
type store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is a Redis-backed embedding cache.
type Cache struct {
	store store
	ttl   time.Duration
}

// New connects to Redis and returns a ready cache. Close releases the
// connection.
func New(addr, password string, ttl time.Duration) (*Cache, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("embcache: connect %s: %w", addr, err)
	}
	return newWithStore(&redisStore{client: client}, ttl), nil
}

func newWithStore(s store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl}
}

// Get returns the cached vector for text, reporting a miss as (nil, false, nil).
func (c *Cache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	data, ok, err := c.store.Get(ctx, cacheKey(text))
	if err != nil || !ok {
		return nil, false, err
	}
	vec, err := bytesToVector(data)
	if err != nil {
		// Treat undecodable entries as misses so they get overwritten.
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores the vector for text.
func (c *Cache) Put(ctx context.Context, text string, vec []float32) error {
	return c.store.Set(ctx, cacheKey(text), vectorToBytes(vec), c.ttl)
}

// Close releases the underlying connection, if any.
func (c *Cache) Close() {
	if rs, ok := c.store.(*redisStore); ok {
		rs.client.Close()
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

// redisStore adapts a rueidis client to the store interface.
type redisStore struct {
	client rueidis.Client
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("embcache: get %s: %w", key, err)
	}
	return data, true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := r.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("embcache: set %s: %w", key, err)
	}
	return nil
}
