package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/pdcal/internal/contracts"
	"github.com/wonny/pdcal/pkg/redis"
)

// Cached is a read-through Redis cache in front of another TableStore.
// Cache failures are logged and never fail a read or write.
type Cached struct {
	inner contracts.TableStore
	cache *redis.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCached wraps inner. A zero ttl uses redis.TTLLong.
func NewCached(inner contracts.TableStore, cache *redis.Cache, ttl time.Duration, log zerolog.Logger) *Cached {
	if ttl <= 0 {
		ttl = redis.TTLLong
	}
	return &Cached{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "store.cached").Logger(),
	}
}

// Read serves from cache, falling back to the inner store and filling the cache
func (c *Cached) Read(ctx context.Context, name string) (*contracts.Table, error) {
	var cached contracts.Table
	hit, err := c.cache.Get(ctx, redis.TableKey(name), &cached)
	if err != nil {
		c.log.Warn().Err(err).Str("table", name).Msg("cache read failed")
	}
	if hit {
		return &cached, nil
	}

	t, err := c.inner.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, redis.TableKey(name), t, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("table", name).Msg("cache fill failed")
	}
	return t, nil
}

// Write replaces the table in the inner store and invalidates its cache entry
func (c *Cached) Write(ctx context.Context, t *contracts.Table) error {
	return c.WriteAll(ctx, t)
}

// WriteAll replaces the tables in the inner store, then invalidates every cache entry
func (c *Cached) WriteAll(ctx context.Context, tables ...*contracts.Table) error {
	if err := c.inner.WriteAll(ctx, tables...); err != nil {
		return err
	}
	for _, t := range tables {
		if err := c.cache.Delete(ctx, redis.TableKey(t.Name)); err != nil {
			c.log.Warn().Err(err).Str("table", t.Name).Msg("cache invalidation failed")
		}
	}
	return nil
}

// List is never cached
func (c *Cached) List(ctx context.Context) ([]contracts.TableInfo, error) {
	return c.inner.List(ctx)
}
