// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/metrics"
)

const (
	shardCount = 64

	cacheType      = "enrichment"
	storeCacheType = "enrichment_store"
)

// entry is a resolved lookup. A nil detail is a memoized negative.
type entry struct {
	detail *Detail
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// Cache memoizes lookups by EIN for the lifetime of the process. Entries
// are never evicted and never re-fetched once resolved.
//
// Two goroutines missing on the same EIN at the same time may both fetch;
// both store the same answer. The fetch runs outside the shard lock so a
// slow lookup never blocks unrelated EINs.
type Cache struct {
	fetcher Fetcher
	store   Store
	shards  [shardCount]*shard

	size      atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
	negatives atomic.Int64
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int64 `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Negatives int64 `json:"negatives"`
}

// NewCache returns an empty cache backed by fetcher. store may be nil.
func NewCache(fetcher Fetcher, store Store) *Cache {
	c := &Cache{fetcher: fetcher, store: store}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	metrics.CacheSize.WithLabelValues(cacheType).Set(0)
	return c
}

func (c *Cache) shardFor(ein string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ein))
	return c.shards[h.Sum32()%shardCount]
}

// GetOrFetch returns the detail for ein, fetching and memoizing it on
// first use. A nil result means no detail is available. An empty EIN
// returns nil without a lookup.
func (c *Cache) GetOrFetch(ctx context.Context, ein string) *Detail {
	ein = strings.TrimSpace(ein)
	if ein == "" {
		return nil
	}

	s := c.shardFor(ein)
	s.mu.RLock()
	e, ok := s.entries[ein]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		metrics.CacheHits.WithLabelValues(cacheType).Inc()
		return e.detail
	}
	c.misses.Add(1)
	metrics.CacheMisses.WithLabelValues(cacheType).Inc()

	if detail, found := c.loadFromStore(ctx, ein); found {
		c.remember(s, ein, detail)
		return detail
	}

	detail, err := c.fetcher.Fetch(ctx, ein)
	if err != nil {
		if !errors.Is(err, ErrSkipped) {
			logging.Ctx(ctx).Debug().Err(err).Str("ein", ein).Msg("Enrichment lookup error")
		}
		return nil
	}

	c.remember(s, ein, detail)
	c.saveToStore(ctx, ein, detail)
	return detail
}

func (c *Cache) remember(s *shard, ein string, detail *Detail) {
	s.mu.Lock()
	_, existed := s.entries[ein]
	s.entries[ein] = entry{detail: detail}
	s.mu.Unlock()

	if existed {
		return
	}
	if detail == nil {
		c.negatives.Add(1)
	}
	metrics.CacheSize.WithLabelValues(cacheType).Set(float64(c.size.Add(1)))
}

func (c *Cache) loadFromStore(ctx context.Context, ein string) (*Detail, bool) {
	if c.store == nil {
		return nil, false
	}
	detail, found, err := c.store.Get(ctx, ein)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("ein", ein).Msg("Enrichment store read failed")
		return nil, false
	}
	if found {
		metrics.CacheHits.WithLabelValues(storeCacheType).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(storeCacheType).Inc()
	}
	return detail, found
}

func (c *Cache) saveToStore(ctx context.Context, ein string, detail *Detail) {
	if c.store == nil {
		return
	}
	if err := c.store.Put(ctx, ein, detail); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("ein", ein).Msg("Enrichment store write failed")
	}
}

// Len returns the number of resolved EINs, negatives included.
func (c *Cache) Len() int {
	return int(c.size.Load())
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:   c.size.Load(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Negatives: c.negatives.Load(),
	}
}
