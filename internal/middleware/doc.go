// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Package middleware provides the HTTP middleware used by the API router.

Every middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)

RequestID honours an upstream X-Request-ID header and otherwise generates a
UUID. The ID is echoed in the response header and stored in the request
context for logging.Ctx and GetRequestID.

PrometheusMetrics labels requests by the chi route pattern rather than the raw
path, so /api/v1/catalog/major/B and /api/v1/catalog/major/D share one series.

AccessLog writes one zerolog event per request. Server errors log at error
level, client errors at warn and everything else at debug.
*/
package middleware
