// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

// The rendered-page cache has two levels. L1 is a per-process LRU with a
// short TTL; L2 is Valkey, shared by every instance. Admin writes
// invalidate both levels.

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays in Valkey.
	DefaultPageTTL = 10 * time.Minute

	// DefaultMemoryTTL is how long a rendered page stays in process memory.
	DefaultMemoryTTL = 5 * time.Minute

	// DefaultMemorySize is the maximum number of pages held in memory.
	DefaultMemorySize = 256

	// HomeKey is the cache key of the site root.
	HomeKey = "home"
)

var (
	pageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corpsite_page_cache_hits_total",
		Help: "Rendered page cache hits by level.",
	}, []string{"level"})
	pageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corpsite_page_cache_misses_total",
		Help: "Rendered page cache misses on both levels.",
	})
)

// PageCache caches rendered HTML by page slug.
type PageCache struct {
	mem    *expirable.LRU[string, []byte]
	client *redis.Client // nil runs with the memory level only
	ttl    time.Duration
}

// NewPageCache creates a page cache. client may be nil.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{
		mem:    expirable.NewLRU[string, []byte](DefaultMemorySize, nil, DefaultMemoryTTL),
		client: client,
		ttl:    ttl,
	}
}

// Get returns cached HTML for a slug. An L2 hit refills L1.
func (pc *PageCache) Get(ctx context.Context, slug string) ([]byte, bool) {
	if html, ok := pc.mem.Get(slug); ok {
		pageCacheHits.WithLabelValues("memory").Inc()
		return html, true
	}

	if pc.client != nil {
		html, err := pc.client.Get(ctx, pageKeyPrefix+slug).Bytes()
		switch {
		case err == nil:
			pageCacheHits.WithLabelValues("valkey").Inc()
			pc.mem.Add(slug, html)
			return html, true
		case !errors.Is(err, redis.Nil):
			slog.Warn("page cache get error", "slug", slug, "error", err)
		}
	}

	pageCacheMisses.Inc()
	return nil, false
}

// Set stores rendered HTML for a slug on both levels.
func (pc *PageCache) Set(ctx context.Context, slug string, html []byte) {
	pc.mem.Add(slug, html)
	if pc.client == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+slug, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "slug", slug, "error", err)
	}
}

// InvalidatePage removes a single page from both levels.
func (pc *PageCache) InvalidatePage(ctx context.Context, slug string) {
	pc.mem.Remove(slug)
	if pc.client == nil {
		return
	}
	if err := pc.client.Del(ctx, pageKeyPrefix+slug).Err(); err != nil {
		slog.Warn("page cache invalidate error", "slug", slug, "error", err)
	}
	slog.Debug("page cache invalidated", "slug", slug)
}

// InvalidateAll removes every cached page. Used when navigation changes,
// since every page renders the menus.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	pc.mem.Purge()
	if pc.client == nil {
		return
	}

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}
