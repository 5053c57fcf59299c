// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Package supervisor runs the long-lived parts of the service under a suture v4
supervisor tree.

	root ("charity-finder")
	├── data-layer
	│   └── BadgerGCService (only with ENRICHMENT_STORE=badger)
	└── api-layer
	    └── HTTPServerService

A crashed service is restarted with suture's backoff; a failure in the data
layer does not stop the HTTP server. Supervisor events are logged through
sutureslog, bridged onto zerolog by logging.NewSlogLogger.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFromConfig(&cfg.Supervisor))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Supervisor.ShutdownTimeout))
	err = tree.Serve(ctx) // returns once ctx is cancelled
*/
package supervisor
