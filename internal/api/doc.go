// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Package api serves the charity finder over HTTP using the chi router.

Public endpoints keep the shape the static front-end already consumes:

	POST /recommend   {"generic_code": "D0", "location": "CA"}
	GET  /featured    optional ?date=YYYY-MM-DD

Both answer with a bare JSON object. Errors use {"detail": "..."} plus a
machine-readable code and the request ID.

Operational endpoints live under /api/v1 and use the models.APIResponse
envelope:

	GET /api/v1/categories
	GET /api/v1/catalog/major/{major}?location=CA&limit=25
	GET /api/v1/health
	GET /api/v1/health/ready
	GET /metrics

Usage:

	handler := api.NewHandler(service, gateway, mapper, enrichCache, version)
	router := api.NewRouter(handler, api.NewChiMiddleware(&cfg.Security))
	srv := &http.Server{Addr: addr, Handler: router.SetupChi()}
*/
package api
