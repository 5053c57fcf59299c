// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package recommend

import (
	"strings"

	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/models"
)

const unknownName = "Unknown"

// CategoryPool holds candidates per NTEE category. Categories iterate in
// order of first appearance; candidates keep their insertion order.
type CategoryPool struct {
	order      []string
	candidates map[string][]models.Charity
}

// NewCategoryPool returns an empty pool.
func NewCategoryPool() *CategoryPool {
	return &CategoryPool{candidates: make(map[string][]models.Charity)}
}

// Add appends c under category.
func (p *CategoryPool) Add(category string, c models.Charity) {
	if _, ok := p.candidates[category]; !ok {
		p.order = append(p.order, category)
	}
	p.candidates[category] = append(p.candidates[category], c)
}

// Categories returns the categories in first-appearance order.
func (p *CategoryPool) Categories() []string {
	return append([]string(nil), p.order...)
}

// Candidates returns the candidates for category.
func (p *CategoryPool) Candidates(category string) []models.Charity {
	return p.candidates[category]
}

// Len returns the total number of candidates.
func (p *CategoryPool) Len() int {
	n := 0
	for _, cs := range p.candidates {
		n += len(cs)
	}
	return n
}

// GroupByCategory projects rows into charities and groups them by NTEE
// code. Rows without an NTEE code are skipped.
func GroupByCategory(rows []catalog.Row) *CategoryPool {
	pool := NewCategoryPool()
	for _, row := range rows {
		c, ok := toCharity(row)
		if !ok {
			continue
		}
		pool.Add(c.NTEECode, c)
	}
	return pool
}

// Charities projects rows into charities in row order, skipping rows
// without an NTEE code.
func Charities(rows []catalog.Row) []models.Charity {
	out := make([]models.Charity, 0, len(rows))
	for _, row := range rows {
		if c, ok := toCharity(row); ok {
			out = append(out, c)
		}
	}
	return out
}

func toCharity(row catalog.Row) (models.Charity, bool) {
	code := strings.TrimSpace(row.NTEECode)
	if code == "" {
		return models.Charity{}, false
	}
	name := strings.TrimSpace(row.Name)
	if name == "" {
		name = unknownName
	}
	return models.Charity{
		Name:     name,
		EIN:      strings.TrimSpace(row.EIN),
		NTEECode: code,
		Location: row.Location(),
	}, true
}
