// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

// Package config loads service configuration from defaults, an optional
// YAML file and environment variables (in that order of precedence).
package config

import (
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Categories CategoriesConfig `koanf:"categories"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Enrichment EnrichmentConfig `koanf:"enrichment"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// CatalogConfig points at the read-only charity catalog.
//
// Environment Variables:
//   - CATALOG_DRIVER: sqlite (default) or duckdb
//   - CATALOG_PATH: database file (default: data/charities.db)
type CatalogConfig struct {
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// CategoriesConfig controls the interest code table.
type CategoriesConfig struct {
	// Path optionally replaces the built-in table with a YAML file of
	// interest code -> NTEE codes.
	Path string `koanf:"path"`

	// FeaturedCodes are the interest codes whose categories feed the daily
	// featured rotation.
	FeaturedCodes []string `koanf:"featured_codes"`
}

// RecommendConfig holds selection sizes.
type RecommendConfig struct {
	MaxCharities     int           `koanf:"max_charities"`
	PoolMultiplier   int           `koanf:"pool_multiplier"`
	FeaturedPoolSize int           `koanf:"featured_pool_size"`
	FeaturedCount    int           `koanf:"featured_count"`
	FeaturedCacheTTL time.Duration `koanf:"featured_cache_ttl"`
}

// EnrichmentConfig configures the Every.org lookup and its cache.
//
// Environment Variables:
//   - EVERY_API_KEY: partners API key (recommend/featured answer 500 without it)
//   - ENRICHMENT_STORE: memory (default), badger or redis
//   - ENRICHMENT_STORE_PATH: badger directory
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: shared redis store
type EnrichmentConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
	Concurrency int           `koanf:"concurrency"`
	RateLimit   float64       `koanf:"rate_limit"` // requests per second, 0 disables
	RateBurst   int           `koanf:"rate_burst"`

	Store         string        `koanf:"store"`
	StorePath     string        `koanf:"store_path"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	RedisTTL      time.Duration `koanf:"redis_ttl"`
}

// SecurityConfig holds CORS and inbound rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig mirrors the suture failure parameters.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// HasAPIKey reports whether an Every.org key is configured.
func (c *EnrichmentConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
