package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockTracker/internal/model"
)

// Cache stores built chart payloads keyed by ticker and timeframe.
type Cache interface {
	Get(ctx context.Context, key string) (*model.ChartPayload, bool, error)
	Set(ctx context.Context, key string, p *model.ChartPayload, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Key builds the cache key of one chart payload.
func Key(ticker, timeframe string) string {
	return fmt.Sprintf("chart-%s-%s", strings.ToUpper(ticker), timeframe)
}

type entry struct {
	payload *model.ChartPayload
	expires time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*model.ChartPayload, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.payload, true, nil
}

// Set stores p until ttl elapses; ttl <= 0 keeps it until deleted.
func (c *MemoryCache) Set(_ context.Context, key string, p *model.ChartPayload, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{payload: p}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) (*model.ChartPayload, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, *model.ChartPayload, time.Duration) error { return nil }

func (Nop) Delete(context.Context, ...string) error { return nil }
