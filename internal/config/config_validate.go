// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is usable. A missing Every.org API
// key is not an error here; requests that need it fail individually.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateCatalog,
		c.validateRecommend,
		c.validateEnrichment,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

var validCatalogDrivers = map[string]bool{
	"sqlite": true,
	"duckdb": true,
}

func (c *Config) validateCatalog() error {
	if !validCatalogDrivers[c.Catalog.Driver] {
		return fmt.Errorf("CATALOG_DRIVER must be one of: sqlite, duckdb")
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	if c.Catalog.MaxOpenConns < 1 {
		return fmt.Errorf("CATALOG_MAX_OPEN_CONNS must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxCharities < 1 {
		return fmt.Errorf("MAX_CHARITIES must be at least 1")
	}
	if r.PoolMultiplier < 1 {
		return fmt.Errorf("POOL_MULTIPLIER must be at least 1")
	}
	if r.FeaturedCount < 1 || r.FeaturedCount > r.FeaturedPoolSize {
		return fmt.Errorf("FEATURED_COUNT must be between 1 and FEATURED_POOL_SIZE (%d)", r.FeaturedPoolSize)
	}
	if len(c.Categories.FeaturedCodes) == 0 {
		return fmt.Errorf("FEATURED_CODES must list at least one interest code")
	}
	return nil
}

var validEnrichmentStores = map[string]bool{
	"memory": true,
	"badger": true,
	"redis":  true,
}

func (c *Config) validateEnrichment() error {
	e := c.Enrichment
	if e.Timeout <= 0 {
		return fmt.Errorf("ENRICHMENT_TIMEOUT must be positive")
	}
	if e.Concurrency < 1 {
		return fmt.Errorf("ENRICHMENT_CONCURRENCY must be at least 1")
	}
	if e.RateLimit < 0 {
		return fmt.Errorf("ENRICHMENT_RATE_LIMIT cannot be negative")
	}
	if !validEnrichmentStores[e.Store] {
		return fmt.Errorf("ENRICHMENT_STORE must be one of: memory, badger, redis")
	}
	if e.Store == "badger" && strings.TrimSpace(e.StorePath) == "" {
		return fmt.Errorf("ENRICHMENT_STORE_PATH is required when ENRICHMENT_STORE=badger")
	}
	if e.Store == "redis" && strings.TrimSpace(e.RedisAddr) == "" {
		return fmt.Errorf("REDIS_ADDR is required when ENRICHMENT_STORE=redis")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production; list the front-end origins explicitly")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
