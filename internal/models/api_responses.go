// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package models

import "time"

// RecommendRequest is the POST /recommend body.
type RecommendRequest struct {
	GenericCode string `json:"generic_code" validate:"max=16"`
	Location    string `json:"location" validate:"max=64"`
}

// FeaturedQuery is the query string of GET /featured.
type FeaturedQuery struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// CatalogQuery is the path and query of GET /api/v1/catalog/major/{major}.
type CatalogQuery struct {
	Major    string `json:"major" validate:"required,len=1,alpha"`
	Location string `json:"location" validate:"omitempty,usstate"`
}

// RecommendResponse is the POST /recommend result.
type RecommendResponse struct {
	GenericCode string    `json:"generic_code"`
	Location    string    `json:"location"`
	NTEECodes   []string  `json:"ntee_codes"`
	Charities   []Charity `json:"charities"`
}

// FeaturedResponse is the GET /featured result.
type FeaturedResponse struct {
	Date      string    `json:"date"`
	Count     int       `json:"count"`
	Charities []Charity `json:"charities"`
}

// ErrorResponse is the error body of the public endpoints. Detail matches
// what the front-end already displays; Code is machine readable.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// APIResponse wraps the /api/v1 endpoints.
//
//	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the error member of APIResponse.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// CategoryInfo describes one interest code for GET /api/v1/categories.
type CategoryInfo struct {
	Code      string   `json:"code"`
	NTEECodes []string `json:"ntee_codes"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status          string            `json:"status"`
	Version         string            `json:"version,omitempty"`
	Uptime          string            `json:"uptime,omitempty"`
	Checks          map[string]string `json:"checks,omitempty"`
	CatalogRows     int               `json:"catalog_rows,omitempty"`
	EnrichmentCache int               `json:"enrichment_cache_entries"`
}
