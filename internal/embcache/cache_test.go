package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type mapStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestCacheRoundTrip(t *testing.T) {
	s := newMapStore()
	c := newWithStore(s, 0)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "hello"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%t err=%v", ok, err)
	}

	vec := []float32{0.25, -1.5, 3}
	if err := c.Put(ctx, "hello", vec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "hello")
	if err != nil || !ok {
		t.Fatalf("Get = (ok=%t, err=%v)", ok, err)
	}
	if len(got) != 3 || got[0] != 0.25 || got[1] != -1.5 || got[2] != 3 {
		t.Fatalf("round trip mismatch: %v", got)
	}

	for key, ttl := range s.ttls {
		if ttl != DefaultTTL {
			t.Fatalf("key %s stored with ttl %v, want default", key, ttl)
		}
	}
}

func TestCacheKeyIsDigestNotText(t *testing.T) {
	s := newMapStore()
	c := newWithStore(s, time.Hour)
	ctx := context.Background()

	secret := "the text itself must not appear in redis keys"
	if err := c.Put(ctx, secret, []float32{1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for key := range s.data {
		if strings.Contains(key, "text itself") {
			t.Fatalf("key %q leaks the source text", key)
		}
		if !strings.HasPrefix(key, keyPrefix) {
			t.Fatalf("key %q missing prefix", key)
		}
	}
}

func TestCacheCorruptEntryIsAMiss(t *testing.T) {
	s := newMapStore()
	c := newWithStore(s, time.Hour)
	ctx := context.Background()

	s.data[cacheKey("bad")] = []byte{1, 2, 3} // not a multiple of 4

	_, ok, err := c.Get(ctx, "bad")
	if ok {
		t.Fatal("corrupt entry must not report a hit")
	}
	if err == nil {
		t.Fatal("corrupt entry should surface a decode error")
	}
}

func TestCachePropagatesBackendErrors(t *testing.T) {
	s := newMapStore()
	s.err = errors.New("backend down")
	c := newWithStore(s, time.Hour)
	ctx := context.Background()

	if _, _, err := c.Get(ctx, "x"); err == nil {
		t.Fatal("expected backend error on get")
	}
	if err := c.Put(ctx, "x", []float32{1}); err == nil {
		t.Fatal("expected backend error on put")
	}
}
