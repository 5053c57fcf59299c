// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Package enrich adds live Every.org metadata to catalog charities.

A Client performs one lookup per EIN against the partners API behind a
circuit breaker and an outbound rate limiter. A Cache memoizes every
resolved lookup, including definite negatives, for the lifetime of the
process:

	client := enrich.NewClient(&cfg.Enrichment)
	cache := enrich.NewCache(client, store)
	cache.EnrichAll(ctx, selected, cfg.Enrichment.Concurrency)

Lookup failures never reach the caller. A charity whose lookup fails keeps
its catalog fields.

# Stores

A Store is an optional second level behind the in-memory cache. The
badger store survives restarts; the redis store is shared between
replicas. Store errors are logged and otherwise ignored.
*/
package enrich
