// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/catalog/catalogtest"
	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/supervisor"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server = config.ServerConfig{Host: "127.0.0.1", Port: 0, Timeout: 5 * time.Second}
	cfg.Catalog = config.CatalogConfig{
		Driver:       "sqlite",
		Path:         catalogtest.Build(t, "sqlite", catalogtest.SampleRows()),
		MaxOpenConns: 2,
		QueryTimeout: time.Second,
	}
	cfg.Recommend = config.RecommendConfig{MaxCharities: 15, PoolMultiplier: 4, FeaturedPoolSize: 200, FeaturedCount: 6}
	cfg.Categories.FeaturedCodes = []string{"D0"}
	cfg.Enrichment = config.EnrichmentConfig{Store: "memory", Timeout: time.Second, Concurrency: 2}
	cfg.Security.RateLimitDisabled = true
	cfg.Supervisor.ShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_WithoutAPIKey(t *testing.T) {
	t.Parallel()

	a, err := newApp(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.close)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"generic_code":"D0"}`))
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "EVERY_API_KEY is not configured.") {
		t.Errorf("recommend without key: %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewApp_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing catalog", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.db")
		if _, err := newApp(context.Background(), cfg); !errors.Is(err, catalog.ErrUnavailable) {
			t.Errorf("newApp() error = %v, want catalog unavailable", err)
		}
	})

	t.Run("empty category file", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		path := filepath.Join(t.TempDir(), "codes.yaml")
		if err := os.WriteFile(path, []byte("# no codes\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg.Categories.Path = path
		if _, err := newApp(context.Background(), cfg); err == nil {
			t.Error("newApp() should fail on an empty category file")
		}
	})
}

func TestApp_SuperviseWithBadgerStore(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Enrichment.Store = "badger"
	cfg.Enrichment.StorePath = t.TempDir()

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.close)

	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	a.supervise(tree)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}
}
