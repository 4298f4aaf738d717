package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"psicosites/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "site:"

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the minimal key/value surface the resolver needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache adapts a redis client to the Cache interface.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	data, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return data, err
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// CachedResolver adds a cache-aside layer in front of the Resolver.
// Cache failures degrade to a direct store lookup; only resolved (published)
// sites are cached, never misses.
type CachedResolver struct {
	resolver *Resolver
	cache    Cache
	ttl      time.Duration
}

func NewCachedResolver(r *Resolver, cache Cache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{resolver: r, cache: cache, ttl: ttl}
}

func (c *CachedResolver) Resolve(ctx context.Context, domain string) (*models.Site, error) {
	key := cacheKeyPrefix + domain

	data, err := c.cache.Get(ctx, key)
	if err == nil {
		var site models.Site
		if jsonErr := json.Unmarshal([]byte(data), &site); jsonErr == nil && site.IsPublished {
			return &site, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("Cache error for key %s: %v", key, err)
	}

	site, err := c.resolver.Resolve(ctx, domain)
	if err != nil {
		return nil, err
	}

	go func() {
		ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, marshalErr := json.Marshal(site)
		if marshalErr != nil {
			return
		}
		if setErr := c.cache.Set(ctxWithTimeout, key, string(payload), c.ttl); setErr != nil {
			log.Printf("Failed to cache site for %s: %v", domain, setErr)
		}
	}()

	return site, nil
}

// Invalidate drops cached entries for the given domains. Called when a site
// is unpublished or its domains change, so a paused tenant stops resolving
// without waiting for the TTL.
func (c *CachedResolver) Invalidate(ctx context.Context, domains ...string) {
	for _, domain := range domains {
		if domain == "" {
			continue
		}
		if err := c.cache.Del(ctx, cacheKeyPrefix+domain); err != nil {
			log.Printf("Failed to invalidate cache for %s: %v", domain, err)
		}
	}
}
