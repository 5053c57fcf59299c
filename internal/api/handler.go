// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package api

import (
	"context"
	"time"

	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/categories"
	"github.com/map9900/charity-finder/internal/models"
)

// Recommender produces recommendation and featured results.
type Recommender interface {
	Recommend(ctx context.Context, code, location string) (*models.RecommendResponse, error)
	Featured(ctx context.Context, date time.Time) (*models.FeaturedResponse, error)
}

// CatalogReader is the read side of the catalog used by the browse and
// readiness endpoints.
type CatalogReader interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context, codes []string, region string) (int, error)
	FetchByMajor(ctx context.Context, majors []string, region string, limit int) ([]catalog.Row, error)
}

// EntryCounter reports how many entries a cache holds.
type EntryCounter interface {
	Len() int
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	service    Recommender
	catalog    CatalogReader
	mapper     *categories.Mapper
	enrichment EntryCounter
	version    string
	startTime  time.Time
	now        func() time.Time
}

// NewHandler builds a Handler. enrichment may be nil.
func NewHandler(service Recommender, cat CatalogReader, mapper *categories.Mapper, enrichment EntryCounter, version string) *Handler {
	return &Handler{
		service:    service,
		catalog:    cat,
		mapper:     mapper,
		enrichment: enrichment,
		version:    version,
		startTime:  time.Now(),
		now:        time.Now,
	}
}

// today is the current UTC calendar date at midnight.
func (h *Handler) today() time.Time {
	y, m, d := h.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
