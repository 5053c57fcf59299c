// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/map9900/charity-finder/internal/cache"
	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/categories"
	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/metrics"
	"github.com/map9900/charity-finder/internal/models"
)

const (
	anyState = "any"

	// DateLayout is the wire format of a featured date.
	DateLayout = "2006-01-02"

	featuredCacheType = "featured"
)

// PoolFetcher reads candidate rows from the catalog.
type PoolFetcher interface {
	FetchPool(ctx context.Context, codes []string, region string, poolSize int, seed *int64) ([]catalog.Row, error)
}

// Enricher merges external metadata into charities in place.
type Enricher interface {
	EnrichAll(ctx context.Context, charities []models.Charity, concurrency int)
}

// Options are the sizes and switches the service runs with.
type Options struct {
	MaxCharities      int
	PoolMultiplier    int
	FeaturedPoolSize  int
	FeaturedCount     int
	FeaturedCodes     []string
	FeaturedCacheTTL  time.Duration
	EnrichConcurrency int
	APIKeyConfigured  bool
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxCharities:      cfg.Recommend.MaxCharities,
		PoolMultiplier:    cfg.Recommend.PoolMultiplier,
		FeaturedPoolSize:  cfg.Recommend.FeaturedPoolSize,
		FeaturedCount:     cfg.Recommend.FeaturedCount,
		FeaturedCodes:     append([]string(nil), cfg.Categories.FeaturedCodes...),
		FeaturedCacheTTL:  cfg.Recommend.FeaturedCacheTTL,
		EnrichConcurrency: cfg.Enrichment.Concurrency,
		APIKeyConfigured:  cfg.Enrichment.HasAPIKey(),
	}
}

// Service runs the recommend and featured operations. It is safe for
// concurrent use.
type Service struct {
	opts     Options
	mapper   *categories.Mapper
	catalog  PoolFetcher
	enricher Enricher
	logger   zerolog.Logger

	featured *cache.Cache[*models.FeaturedResponse]
	flight   singleflight.Group
}

// NewService wires the pipeline. Call Close to stop the featured cache
// sweeper.
func NewService(opts Options, mapper *categories.Mapper, pool PoolFetcher, enricher Enricher) *Service {
	s := &Service{
		opts:     opts,
		mapper:   mapper,
		catalog:  pool,
		enricher: enricher,
		logger:   logging.WithComponent("recommend"),
	}
	if opts.FeaturedCacheTTL > 0 {
		s.featured = cache.New[*models.FeaturedResponse](featuredCacheType, opts.FeaturedCacheTTL)
	}
	return s
}

// Close releases background resources.
func (s *Service) Close() {
	if s.featured != nil {
		s.featured.Close()
	}
}

// NormalizeState maps free-form survey input to a two-letter state code
// or "any". Only exactly two ASCII letters count as a state.
func NormalizeState(location string) string {
	loc := strings.TrimSpace(location)
	if loc == "" || strings.EqualFold(loc, anyState) {
		return anyState
	}
	if len(loc) == 2 && isASCIILetter(loc[0]) && isASCIILetter(loc[1]) {
		return strings.ToUpper(loc)
	}
	return anyState
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Recommend returns up to MaxCharities charities for an interest code,
// interleaved across its NTEE categories and preferring location when it
// names a state.
func (s *Service) Recommend(ctx context.Context, code, location string) (*models.RecommendResponse, error) {
	resp, err := s.recommend(ctx, code, location)
	selected := 0
	if resp != nil {
		selected = len(resp.Charities)
	}
	metrics.RecordRecommendation("recommend", outcome(err), selected)
	return resp, err
}

func (s *Service) recommend(ctx context.Context, code, location string) (*models.RecommendResponse, error) {
	code = categories.NormalizeCode(code)
	location = strings.TrimSpace(location)

	if code == "" {
		return nil, newRequestError(ErrEmptyCode, "generic_code is required.")
	}
	codes := s.mapper.Resolve(code)
	if len(codes) == 0 {
		return nil, newRequestError(ErrUnknownCode, "Unknown generic code: "+code)
	}
	if !s.opts.APIKeyConfigured {
		return nil, newRequestError(ErrMissingAPIKey, "EVERY_API_KEY is not configured.")
	}

	state := NormalizeState(location)
	poolSize := s.opts.MaxCharities * s.opts.PoolMultiplier

	rows, err := s.catalog.FetchPool(ctx, codes, state, poolSize, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch pool for %s: %w", code, err)
	}
	if len(rows) == 0 {
		return nil, newRequestError(ErrNoResults, "No charities found in the database for these NTEE codes and location.")
	}

	pool := GroupByCategory(rows)
	selected := Select(pool, s.opts.MaxCharities)
	if len(selected) == 0 {
		return nil, newRequestError(ErrNoResults, "No charities could be selected after grouping.")
	}

	s.enricher.EnrichAll(ctx, selected, s.opts.EnrichConcurrency)

	logging.Ctx(ctx).Debug().
		Str("code", code).
		Str("state", state).
		Int("pool", len(rows)).
		Int("categories", len(pool.Categories())).
		Int("selected", len(selected)).
		Msg("Recommendation built")

	return &models.RecommendResponse{
		GenericCode: code,
		Location:    location,
		NTEECodes:   codes,
		Charities:   selected,
	}, nil
}

// FeaturedSeed is the shuffle seed for a date: its YYYYMMDD value.
func FeaturedSeed(date time.Time) int64 {
	y, m, d := date.Date()
	return int64(y)*10000 + int64(m)*100 + int64(d)
}

// Featured returns the featured charities for date. Results are memoized
// per date; concurrent first calls for the same date share one
// computation. The returned value is shared and must not be modified.
func (s *Service) Featured(ctx context.Context, date time.Time) (*models.FeaturedResponse, error) {
	resp, err := s.featuredCached(ctx, date)
	count := 0
	if resp != nil {
		count = resp.Count
	}
	metrics.RecordRecommendation("featured", outcome(err), count)
	return resp, err
}

func (s *Service) featuredCached(ctx context.Context, date time.Time) (*models.FeaturedResponse, error) {
	if !s.opts.APIKeyConfigured {
		return nil, newRequestError(ErrMissingAPIKey, "EVERY_API_KEY is not configured.")
	}

	key := date.Format(DateLayout)
	if s.featured != nil {
		if resp, ok := s.featured.Get(key); ok {
			return resp, nil
		}
	}

	// Detached from the caller so one cancelled request does not fail the
	// others waiting on the same computation.
	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		resp, err := s.buildFeatured(context.WithoutCancel(ctx), date)
		if err != nil {
			return nil, err
		}
		if s.featured != nil {
			s.featured.Set(key, resp)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug().Str("date", key).Msg("Featured computation shared")
	}
	return v.(*models.FeaturedResponse), nil
}

func (s *Service) buildFeatured(ctx context.Context, date time.Time) (*models.FeaturedResponse, error) {
	key := date.Format(DateLayout)
	seed := FeaturedSeed(date)

	resp := &models.FeaturedResponse{Date: key, Charities: []models.Charity{}}

	codes := s.mapper.ResolveMany(s.opts.FeaturedCodes...)
	if len(codes) == 0 {
		return resp, nil
	}

	rows, err := s.catalog.FetchPool(ctx, codes, anyState, s.opts.FeaturedPoolSize, &seed)
	if err != nil {
		return nil, fmt.Errorf("fetch featured pool for %s: %w", key, err)
	}
	pool := Charities(rows)
	if len(pool) == 0 {
		return resp, nil
	}

	s.enricher.EnrichAll(ctx, pool, s.opts.EnrichConcurrency)

	featured := Sample(pool, seed, s.opts.FeaturedCount)
	if featured != nil {
		resp.Charities = featured
	}
	resp.Count = len(resp.Charities)

	s.logger.Info().
		Str("date", key).
		Int("pool", len(pool)).
		Int("featured", resp.Count).
		Msg("Featured charities computed")
	return resp, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyCode), errors.Is(err, ErrUnknownCode):
		return "bad_request"
	case errors.Is(err, ErrNoResults):
		return "not_found"
	default:
		return "error"
	}
}
