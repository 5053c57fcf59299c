// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package recommend

import (
	"math/rand"

	"github.com/map9900/charity-finder/internal/models"
)

// Sample keeps the charities that have a website, shuffles them with a
// generator seeded by seed and returns the first limit. The same seed and
// input order always give the same output. pool is not modified.
func Sample(pool []models.Charity, seed int64, limit int) []models.Charity {
	if limit <= 0 {
		return nil
	}

	withWebsite := make([]models.Charity, 0, len(pool))
	for _, c := range pool {
		if c.HasWebsite() {
			withWebsite = append(withWebsite, c)
		}
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic daily rotation, not security sensitive
	rng.Shuffle(len(withWebsite), func(i, j int) {
		withWebsite[i], withWebsite[j] = withWebsite[j], withWebsite[i]
	})

	if len(withWebsite) > limit {
		withWebsite = withWebsite[:limit]
	}
	return withWebsite
}
