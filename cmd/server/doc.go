// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Command server runs the charity finder HTTP API.

Startup order:

 1. Configuration (koanf: defaults, optional YAML file, environment)
 2. Logging (zerolog)
 3. Catalog, opened read-only (sqlite or duckdb)
 4. Interest code table (built in, or categories.path)
 5. Enrichment client and cache, with an optional badger or redis store
 6. Recommendation service and chi router
 7. Supervisor tree running the HTTP server and store maintenance

A missing EVERY_API_KEY does not stop startup; /recommend and /featured
answer 500 until it is set.

SIGINT and SIGTERM cancel the supervisor tree, which drains in-flight
requests before the process exits.
*/
package main
