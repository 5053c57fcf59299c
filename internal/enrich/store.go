// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/map9900/charity-finder/internal/config"
)

// StoreType selects the second-level store behind the in-memory cache.
type StoreType string

const (
	// StoreMemory keeps lookups in process memory only.
	StoreMemory StoreType = "memory"

	// StoreBadger persists lookups in a local BadgerDB directory.
	StoreBadger StoreType = "badger"

	// StoreRedis shares lookups between replicas through Redis.
	StoreRedis StoreType = "redis"
)

const storeKeyPrefix = "enrich:"

// Store persists resolved lookups. Get reports found=false when the EIN
// has never been resolved; a found entry with a nil Detail is a memoized
// negative.
type Store interface {
	Get(ctx context.Context, ein string) (detail *Detail, found bool, err error)
	Put(ctx context.Context, ein string, detail *Detail) error
	Close() error
}

// OpenStore builds the configured store. The memory store needs no second
// level, so it yields a nil Store.
func OpenStore(ctx context.Context, cfg *config.EnrichmentConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case "", StoreMemory:
		return nil, nil
	case StoreBadger:
		s, err := OpenBadgerStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case StoreRedis:
		s, err := NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown enrichment store %q", cfg.Store)
	}
}

// storedEntry is the persisted form. Found=false is the negative marker.
type storedEntry struct {
	Found  bool    `json:"found"`
	Detail *Detail `json:"detail,omitempty"`
}

func encodeEntry(d *Detail) ([]byte, error) {
	data, err := json.Marshal(storedEntry{Found: d != nil, Detail: d})
	if err != nil {
		return nil, fmt.Errorf("marshal enrichment entry: %w", err)
	}
	return data, nil
}

func decodeEntry(data []byte) (*Detail, error) {
	var e storedEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal enrichment entry: %w", err)
	}
	if !e.Found {
		return nil, nil
	}
	if e.Detail == nil {
		return &Detail{}, nil
	}
	return e.Detail, nil
}

func storeKey(ein string) string {
	return storeKeyPrefix + ein
}
