// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package services

import (
	"context"
	"time"

	"github.com/map9900/charity-finder/internal/logging"
)

// GCRunner is satisfied by *enrich.BadgerStore.
type GCRunner interface {
	RunGC(discardRatio float64) error
}

const (
	defaultGCInterval     = 10 * time.Minute
	defaultGCDiscardRatio = 0.5
)

// BadgerGCService reclaims value log space of the enrichment store. A GC
// error is logged and the loop continues; badger reports "nothing to
// rewrite" as a nil error through RunGC.
type BadgerGCService struct {
	store        GCRunner
	interval     time.Duration
	discardRatio float64
}

// NewBadgerGCService runs store.RunGC every interval (10m when <= 0).
func NewBadgerGCService(store GCRunner, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	return &BadgerGCService{store: store, interval: interval, discardRatio: defaultGCDiscardRatio}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.discardRatio); err != nil {
				logging.Warn().Err(err).Msg("Enrichment store GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Enrichment store GC finished")
		}
	}
}

func (s *BadgerGCService) String() string {
	return "badger-gc"
}
