// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/map9900/charity-finder/internal/models"
	"github.com/map9900/charity-finder/internal/recommend"
)

const (
	defaultBrowseLimit = 25
	maxBrowseLimit     = 100
)

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	codes := h.mapper.Codes()
	out := make([]models.CategoryInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, models.CategoryInfo{Code: code, NTEECodes: h.mapper.Resolve(code)})
	}
	respondJSON(w, http.StatusOK, out, start)
}

// CatalogByMajor handles GET /api/v1/catalog/major/{major}. It returns raw
// catalog rows for one NTEE major group without enrichment.
func (h *Handler) CatalogByMajor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := models.CatalogQuery{
		Major:    strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "major"))),
		Location: r.URL.Query().Get("location"),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	region := recommend.NormalizeState(q.Location)
	limit := getIntParam(r, "limit", defaultBrowseLimit, maxBrowseLimit)

	rows, err := h.catalog.FetchByMajor(r.Context(), []string{q.Major}, region, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "CATALOG_UNAVAILABLE", "Catalog query failed", err)
		return
	}

	charities := recommend.Charities(rows)
	if charities == nil {
		charities = []models.Charity{}
	}
	respondJSON(w, http.StatusOK, charities, start)
}
