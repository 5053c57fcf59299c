// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package catalog

import "database/sql"

var SeededMultiplier = seededMultiplier

const SeededOrderModulus = seededOrderModulus

// DB exposes the handle so tests can probe read-only enforcement.
func DB(g *Gateway) *sql.DB { return g.db }
