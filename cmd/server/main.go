// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("catalog_driver", cfg.Catalog.Driver).
		Str("catalog_path", cfg.Catalog.Path).
		Str("enrichment_store", cfg.Enrichment.Store).
		Msg("Starting charity finder")

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Charity finder stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(&cfg.Supervisor))
	if err != nil {
		return err
	}
	a.supervise(tree)

	logging.Info().Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
