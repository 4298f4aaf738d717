package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"psicosites/internal/models"
)

type memoryCache struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	value, ok := c.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *memoryCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	return value, ok
}

func (c *memoryCache) put(t *testing.T, key string, site models.Site) {
	t.Helper()
	payload, err := json.Marshal(site)
	if err != nil {
		t.Fatalf("marshal site: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = string(payload)
}

// waitForKey polls until the async backfill lands or the deadline passes.
func (c *memoryCache) waitForKey(t *testing.T, key string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if value, ok := c.get(key); ok {
			return value
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("cache key %s was never written", key)
	return ""
}

func TestCachedResolverHitSkipsStore(t *testing.T) {
	store := &stubStore{}
	cache := newMemoryCache()
	cache.put(t, "site:maria", models.Site{ID: "s1", Subdomain: "maria", IsPublished: true})
	cr := NewCachedResolver(New(store), cache, time.Minute)

	site, err := cr.Resolve(context.Background(), "maria")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.ID != "s1" {
		t.Fatalf("resolved site %s, want s1", site.ID)
	}
	if store.calls != 0 {
		t.Fatalf("store queried %d times on a cache hit, want 0", store.calls)
	}
}

func TestCachedResolverMissBackfills(t *testing.T) {
	store := &stubStore{sites: []models.Site{
		{ID: "s1", Subdomain: "maria", IsPublished: true},
	}}
	cache := newMemoryCache()
	cr := NewCachedResolver(New(store), cache, time.Minute)

	site, err := cr.Resolve(context.Background(), "maria")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.ID != "s1" {
		t.Fatalf("resolved site %s, want s1", site.ID)
	}
	if store.calls != 1 {
		t.Fatalf("store queried %d times on a miss, want 1", store.calls)
	}

	payload := cache.waitForKey(t, "site:maria")
	var cached models.Site
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		t.Fatalf("cached payload is not a site: %v", err)
	}
	if cached.ID != "s1" || !cached.IsPublished {
		t.Fatalf("cached site %+v, want published s1", cached)
	}

	if _, err := cr.Resolve(context.Background(), "maria"); err != nil {
		t.Fatalf("unexpected error on second resolve: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("store queried %d times after backfill, want still 1", store.calls)
	}
}

func TestCachedResolverMissesAreNotCached(t *testing.T) {
	store := &stubStore{}
	cache := newMemoryCache()
	cr := NewCachedResolver(New(store), cache, time.Minute)

	if _, err := cr.Resolve(context.Background(), "ghost"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}

	// Give any stray backfill goroutine a moment, then verify nothing landed.
	time.Sleep(50 * time.Millisecond)
	if _, ok := cache.get("site:ghost"); ok {
		t.Fatal("not-found results must never be cached")
	}
}

func TestCachedResolverDegradesOnCacheError(t *testing.T) {
	store := &stubStore{sites: []models.Site{
		{ID: "s1", Subdomain: "maria", IsPublished: true},
	}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cr := NewCachedResolver(New(store), cache, time.Minute)

	site, err := cr.Resolve(context.Background(), "maria")
	if err != nil {
		t.Fatalf("expected degradation to the store, got error: %v", err)
	}
	if site.ID != "s1" {
		t.Fatalf("resolved site %s, want s1", site.ID)
	}
	if store.calls != 1 {
		t.Fatalf("store queried %d times, want 1", store.calls)
	}
}

func TestCachedResolverIgnoresStaleUnpublishedEntry(t *testing.T) {
	// A stale cached copy of an unpublished site must not resolve; the
	// lookup falls through to the store, which no longer matches it.
	store := &stubStore{sites: []models.Site{
		{ID: "s1", Subdomain: "maria", IsPublished: false},
	}}
	cache := newMemoryCache()
	cache.put(t, "site:maria", models.Site{ID: "s1", Subdomain: "maria", IsPublished: false})
	cr := NewCachedResolver(New(store), cache, time.Minute)

	if _, err := cr.Resolve(context.Background(), "maria"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound for unpublished cached site, got %v", err)
	}
}

func TestInvalidateDropsBothDomains(t *testing.T) {
	store := &stubStore{}
	cache := newMemoryCache()
	cache.put(t, "site:maria", models.Site{ID: "s1", IsPublished: true})
	cache.put(t, "site:mariasouza.com.br", models.Site{ID: "s1", IsPublished: true})
	cache.put(t, "site:joao", models.Site{ID: "s2", IsPublished: true})
	cr := NewCachedResolver(New(store), cache, time.Minute)

	cr.Invalidate(context.Background(), "maria", "mariasouza.com.br", "")

	if _, ok := cache.get("site:maria"); ok {
		t.Fatal("subdomain entry survived invalidation")
	}
	if _, ok := cache.get("site:mariasouza.com.br"); ok {
		t.Fatal("custom domain entry survived invalidation")
	}
	if _, ok := cache.get("site:joao"); !ok {
		t.Fatal("unrelated entry was invalidated")
	}
}
