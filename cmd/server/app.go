// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/map9900/charity-finder/internal/api"
	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/categories"
	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/enrich"
	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/recommend"
	"github.com/map9900/charity-finder/internal/supervisor"
	"github.com/map9900/charity-finder/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app owns every long-lived component so they can be closed in reverse
// order of creation.
type app struct {
	cfg     *config.Config
	gateway *catalog.Gateway
	store   enrich.Store
	cache   *enrich.Cache
	service *recommend.Service
	handler http.Handler
	server  *http.Server
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.gateway, err = catalog.Open(&cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	mapper, err := loadMapper(&cfg.Categories)
	if err != nil {
		return nil, err
	}
	logging.Info().Int("codes", mapper.Len()).Msg("Interest code table loaded")

	a.store, err = enrich.OpenStore(ctx, &cfg.Enrichment)
	if err != nil {
		return nil, fmt.Errorf("open enrichment store: %w", err)
	}
	a.cache = enrich.NewCache(enrich.NewClient(&cfg.Enrichment), a.store)

	if !cfg.Enrichment.HasAPIKey() {
		logging.Warn().Msg("EVERY_API_KEY is not set; /recommend and /featured will answer 500")
	}

	a.service = recommend.NewService(recommend.OptionsFromConfig(cfg), mapper, a.gateway, a.cache)

	handler := api.NewHandler(a.service, a.gateway, mapper, a.cache, version)
	a.handler = api.NewRouter(handler, api.NewChiMiddlewareFromSecurity(&cfg.Security)).SetupChi()

	a.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           a.handler,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	return a, nil
}

func loadMapper(cfg *config.CategoriesConfig) (*categories.Mapper, error) {
	if cfg.Path == "" {
		return categories.Default()
	}
	mapper, err := categories.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load interest codes from %s: %w", cfg.Path, err)
	}
	return mapper, nil
}

// supervise registers the app's services with tree.
func (a *app) supervise(tree *supervisor.SupervisorTree) {
	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Supervisor.ShutdownTimeout))
	logging.Info().Str("addr", a.server.Addr).Msg("HTTP server service added")

	if gc, ok := a.store.(services.GCRunner); ok {
		tree.AddDataService(services.NewBadgerGCService(gc, 0))
		logging.Info().Msg("Enrichment store GC service added")
	}
}

func (a *app) close() {
	if a.service != nil {
		a.service.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing enrichment store")
		}
	}
	if a.gateway != nil {
		if err := a.gateway.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}
}
