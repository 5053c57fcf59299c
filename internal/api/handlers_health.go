// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/map9900/charity-finder/internal/models"
)

const readinessTimeout = 2 * time.Second

// Health handles GET /api/v1/health. It reports liveness and never
// touches the catalog.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	respondJSON(w, http.StatusOK, h.healthStatus("ok", nil), start)
}

// HealthReady handles GET /api/v1/health/ready and answers 503 while the
// catalog cannot be queried. A ready answer carries the number of catalog
// rows reachable through the interest code table.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"catalog": "ok"}
	if err := h.catalog.Ping(ctx); err != nil {
		checks["catalog"] = "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, h.healthStatus("not_ready", checks), start)
		return
	}

	rows, err := h.catalog.Count(ctx, h.mapper.ResolveMany(h.mapper.Codes()...), "")
	if err != nil {
		checks["catalog"] = "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, h.healthStatus("not_ready", checks), start)
		return
	}
	status := h.healthStatus("ready", checks)
	status.CatalogRows = rows
	respondJSON(w, http.StatusOK, status, start)
}

func (h *Handler) healthStatus(status string, checks map[string]string) models.HealthStatus {
	hs := models.HealthStatus{
		Status:  status,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  checks,
	}
	if h.enrichment != nil {
		hs.EnrichmentCache = h.enrichment.Len()
	}
	return hs
}
