// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

// Package catalog reads candidate charities from the read-only catalog
// database.
//
// The catalog is a single table:
//
//	charities(ein, name, city, state, ntee_code, ntee_major)
//
// stored either in SQLite (modernc.org/sqlite, the default) or DuckDB.
// One *sql.DB is shared by the whole process; both drivers serve
// concurrent readers from the pool.
//
// Pool retrieval is two steps that are kept apart on purpose:
//
//  1. queryWithFallback runs the category query with the region filter and,
//     only if that returns nothing, again without it.
//  2. SeededReorder optionally shuffles the result with a fixed seed before
//     the pool is truncated.
package catalog
