// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/map9900/charity-finder/internal/models"
)

// EnrichAll merges cached or freshly fetched details into charities in
// place, running at most concurrency lookups at once. Charities without an
// EIN are skipped. Lookup failures leave the charity unchanged.
func (c *Cache) EnrichAll(ctx context.Context, charities []models.Charity, concurrency int) {
	if len(charities) == 0 {
		return
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := range charities {
		if charities[i].EIN == "" {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			Apply(&charities[i], c.GetOrFetch(ctx, charities[i].EIN))
			return nil
		})
	}
	_ = g.Wait()
}
