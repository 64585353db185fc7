package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"SessionScreener/internal/metrics"
	"SessionScreener/internal/model"
)

// Cache stores serialized bar windows.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	Backend() string
}

type memoryCache struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

type entry struct {
	b   []byte
	exp time.Time
}

// NewMemoryCache returns an in-process cache.
func NewMemoryCache() Cache {
	return &memoryCache{m: make(map[string]entry), now: time.Now}
}

func (c *memoryCache) Backend() string { return "memory" }

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && c.now().After(e.exp)) {
		return nil, false
	}
	return e.b, true
}

func (c *memoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}
	c.m[key] = e
}

type redisCache struct{ r *redis.Client }

func (r *redisCache) Backend() string { return "redis" }

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	v, err := r.r.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := r.r.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache write failed")
	}
}

// NewCache returns a Redis-backed cache when addr is set, memory otherwise.
func NewCache(addr string) Cache {
	if addr != "" {
		return &redisCache{r: redis.NewClient(&redis.Options{Addr: addr})}
	}
	return NewMemoryCache()
}

// CachedFetcher serves repeated window requests from a Cache.
type CachedFetcher struct {
	next    Fetcher
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Registry
}

func NewCachedFetcher(next Fetcher, cache Cache, ttl time.Duration, m *metrics.Registry) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, metrics: m}
}

func (f *CachedFetcher) Name() string { return f.next.Name() }

func cacheKey(provider, symbol string, from, to time.Time) string {
	return fmt.Sprintf("bars:%s:%s:%d:%d", provider, symbol, from.Unix(), to.Unix())
}

func (f *CachedFetcher) FetchHourlyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	key := cacheKey(f.next.Name(), symbol, from, to)
	if raw, ok := f.cache.Get(ctx, key); ok {
		var bars []model.Bar
		if err := json.Unmarshal(raw, &bars); err == nil {
			f.metrics.CacheHit(f.cache.Backend())
			return bars, nil
		}
	}
	f.metrics.CacheMiss(f.cache.Backend())

	bars, err := f.next.FetchHourlyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(bars); err == nil {
		f.cache.Set(ctx, key, raw, f.ttl)
	}
	return bars, nil
}
