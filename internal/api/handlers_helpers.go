// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/middleware"
	"github.com/map9900/charity-finder/internal/models"
	"github.com/map9900/charity-finder/internal/recommend"
	"github.com/map9900/charity-finder/internal/validation"
)

// maxBodyBytes caps POST bodies; a recommend request is two short strings.
const maxBodyBytes = 16 << 10

// sanitizeLogValue escapes control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// writeJSON marshals v with go-json and writes it with status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondJSON wraps data in the /api/v1 envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	writeJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError writes an /api/v1 envelope error.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	writeJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}

// respondDetail writes the {"detail": ...} error of the public endpoints.
func respondDetail(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	writeJSON(w, status, &models.ErrorResponse{
		Detail:    detail,
		Code:      code,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

// respondServiceError maps a recommend error onto a status and detail.
// Server-side failures are logged with their cause; the client only sees
// a generic message unless the error carries a client-facing one.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Request failed")
	}
	respondDetail(w, r, status, code, recommend.Message(err, "Internal server error."))
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrEmptyCode):
		return http.StatusBadRequest, "MISSING_CODE"
	case errors.Is(err, recommend.ErrUnknownCode):
		return http.StatusBadRequest, "UNKNOWN_CODE"
	case errors.Is(err, recommend.ErrNoResults):
		return http.StatusNotFound, "NO_RESULTS"
	case errors.Is(err, recommend.ErrMissingAPIKey):
		return http.StatusInternalServerError, "MISSING_API_KEY"
	case errors.Is(err, recommend.ErrCatalogUnavailable):
		return http.StatusInternalServerError, "CATALOG_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(data, v)
}

// validateRequest validates v and converts failures to an API error.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getIntParam returns the query parameter as an int clamped to [1, maxVal],
// or def when it is absent or not a number.
func getIntParam(r *http.Request, name string, def, maxVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return min(v, maxVal)
}
