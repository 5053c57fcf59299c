// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Package cache provides a small thread-safe in-memory cache with TTL
expiry, used to memoize computed API results such as the daily featured
list.

Expired entries are dropped lazily on Get and by a background sweep that
runs until Close is called:

	c := cache.New[*FeaturedResult]("featured", time.Hour)
	defer c.Close()

	c.Set("2024-01-01", result)
	if v, ok := c.Get("2024-01-01"); ok {
	    return v, nil
	}

Hits, misses, evictions and the current size are exported under the
cache_type label given to New.
*/
package cache
