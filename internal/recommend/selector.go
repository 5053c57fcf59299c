// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package recommend

import "github.com/map9900/charity-finder/internal/models"

// Select picks up to limit charities from pool, one per category per round
// in category order, so no category gets a second pick before every other
// category with candidates left has had another. Candidates whose
// DedupKey was already picked are skipped. Selection stops at limit or
// after a round in which no category could contribute.
func Select(pool *CategoryPool, limit int) []models.Charity {
	if pool == nil || limit <= 0 {
		return nil
	}

	var active []string
	for _, category := range pool.Categories() {
		if len(pool.Candidates(category)) > 0 {
			active = append(active, category)
		}
	}
	if len(active) == 0 {
		return nil
	}

	selected := make([]models.Charity, 0, limit)
	seen := make(map[string]struct{}, limit)
	cursor := make(map[string]int, len(active))

	for len(selected) < limit {
		progressed := false
		for _, category := range active {
			candidates := pool.Candidates(category)
			idx := cursor[category]
			for idx < len(candidates) {
				c := candidates[idx]
				idx++
				key := c.DedupKey()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				selected = append(selected, c)
				progressed = true
				break
			}
			cursor[category] = idx

			if len(selected) >= limit {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return selected
}
