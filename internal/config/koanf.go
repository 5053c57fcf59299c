// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/charity-finder/config.yaml",
	"/etc/charity-finder/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultCORSOrigins are the front-ends allowed to call the API.
var DefaultCORSOrigins = []string{
	"https://map9900.github.io",
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

// DefaultFeaturedCodes feed the daily featured rotation.
var DefaultFeaturedCodes = []string{"D0", "B0", "E0", "P0", "C0", "N0"}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Catalog: CatalogConfig{
			Driver:       "sqlite",
			Path:         "data/charities.db",
			MaxOpenConns: 8,
			QueryTimeout: 5 * time.Second,
		},
		Categories: CategoriesConfig{
			FeaturedCodes: append([]string(nil), DefaultFeaturedCodes...),
		},
		Recommend: RecommendConfig{
			MaxCharities:     15,
			PoolMultiplier:   4,
			FeaturedPoolSize: 200,
			FeaturedCount:    6,
			FeaturedCacheTTL: time.Hour,
		},
		Enrichment: EnrichmentConfig{
			BaseURL:     "https://partners.every.org",
			Timeout:     10 * time.Second,
			Concurrency: 8,
			RateLimit:   20,
			RateBurst:   10,
			Store:       "memory",
			StorePath:   "data/enrichment",
			RedisAddr:   "localhost:6379",
		},
		Security: SecurityConfig{
			CORSOrigins:     append([]string(nil), DefaultCORSOrigins...),
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf layers defaults, the optional config file and environment
// variables, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"categories.featured_codes",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":         "server.port",
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"catalog_driver":         "catalog.driver",
	"catalog_path":           "catalog.path",
	"charities_db":           "catalog.path",
	"catalog_max_open_conns": "catalog.max_open_conns",
	"catalog_query_timeout":  "catalog.query_timeout",

	"categories_path": "categories.path",
	"featured_codes":  "categories.featured_codes",

	"max_charities":      "recommend.max_charities",
	"pool_multiplier":    "recommend.pool_multiplier",
	"featured_pool_size": "recommend.featured_pool_size",
	"featured_count":     "recommend.featured_count",
	"featured_cache_ttl": "recommend.featured_cache_ttl",

	"every_api_key":          "enrichment.api_key",
	"every_base_url":         "enrichment.base_url",
	"enrichment_timeout":     "enrichment.timeout",
	"enrichment_concurrency": "enrichment.concurrency",
	"enrichment_rate_limit":  "enrichment.rate_limit",
	"enrichment_rate_burst":  "enrichment.rate_burst",
	"enrichment_store":       "enrichment.store",
	"enrichment_store_path":  "enrichment.store_path",
	"redis_addr":             "enrichment.redis_addr",
	"redis_password":         "enrichment.redis_password",
	"redis_db":               "enrichment.redis_db",
	"redis_ttl":              "enrichment.redis_ttl",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables return "" and are ignored.
//
//	EVERY_API_KEY -> enrichment.api_key
//	CATALOG_PATH  -> catalog.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
