// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package cache

import (
	"sync"
	"time"

	"github.com/map9900/charity-finder/internal/metrics"
)

// defaultCleanupInterval is how often the background sweep runs.
const defaultCleanupInterval = 5 * time.Minute

// Entry is a cached value with its expiry.
type Entry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Stats tracks cache activity.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a TTL cache safe for concurrent use.
type Cache[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]Entry[V]
	ttl     time.Duration
	now     func() time.Time

	statsMu sync.Mutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache whose entries live for ttl and starts the background
// sweep. name labels the exported metrics.
func New[V any](name string, ttl time.Duration) *Cache[V] {
	return newCache[V](name, ttl, defaultCleanupInterval, time.Now)
}

func newCache[V any](name string, ttl, cleanupInterval time.Duration, now func() time.Time) *Cache[V] {
	c := &Cache[V]{
		name:    name,
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		now:     now,
		stats:   Stats{LastCleanup: now()},
		stop:    make(chan struct{}),
	}
	metrics.CacheSize.WithLabelValues(name).Set(0)
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Get returns the value for key if present and not expired. An expired
// entry is removed and counts as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !exists {
		c.recordMiss()
		return zero, false
	}

	if c.now().After(entry.ExpiresAt) {
		evicted := false
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := c.entries[key]; ok && c.now().After(current.ExpiresAt) {
			delete(c.entries, key)
			c.updateSize()
			evicted = true
		}
		c.mu.Unlock()
		c.recordMiss()
		if evicted {
			c.recordEvictions(1)
		}
		return zero, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.updateSize()
}

// Delete removes key. Missing keys are ignored.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.updateSize()
	c.mu.Unlock()

	if existed {
		c.recordEvictions(1)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry[V])
	c.updateSize()
	c.mu.Unlock()

	c.recordEvictions(evicted)
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the counters.
func (c *Cache[V]) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns hits as a percentage of lookups.
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background sweep. The cache stays usable.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries.
func (c *Cache[V]) cleanup() {
	now := c.now()
	c.mu.Lock()
	evicted := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.updateSize()
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.LastCleanup = now
	c.statsMu.Unlock()
	c.recordEvictions(evicted)
}

// updateSize must be called with mu held.
func (c *Cache[V]) updateSize() {
	n := int64(len(c.entries))
	c.statsMu.Lock()
	c.stats.TotalKeys = n
	c.statsMu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(n))
}

func (c *Cache[V]) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache[V]) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache[V]) recordEvictions(n int64) {
	if n == 0 {
		return
	}
	c.statsMu.Lock()
	c.stats.Evictions += n
	c.statsMu.Unlock()
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}
