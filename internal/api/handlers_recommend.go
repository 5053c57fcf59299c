// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package api

import (
	"net/http"
	"time"

	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/models"
	"github.com/map9900/charity-finder/internal/recommend"
)

// Recommend handles POST /recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := decodeBody(w, r, &req); err != nil {
		logging.Ctx(r.Context()).Debug().
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Rejected recommend body")
		respondDetail(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON object.")
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondDetail(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	resp, err := h.service.Recommend(r.Context(), req.GenericCode, req.Location)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Featured handles GET /featured. The optional date query selects another
// day's rotation; it defaults to today in UTC.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	q := models.FeaturedQuery{Date: r.URL.Query().Get("date")}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondDetail(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message)
		return
	}

	date := h.today()
	if q.Date != "" {
		// Already validated against the same layout.
		parsed, err := time.Parse(recommend.DateLayout, q.Date)
		if err != nil {
			respondDetail(w, r, http.StatusBadRequest, "INVALID_DATE", "date must use YYYY-MM-DD.")
			return
		}
		date = parsed
	}

	resp, err := h.service.Featured(r.Context(), date)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
