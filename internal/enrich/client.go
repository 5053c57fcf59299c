// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a nonprofit response is read.
	maxResponseBytes = 1 << 20
)

// ErrSkipped marks a lookup that was not attempted or not completed: the
// breaker was open, the rate limiter could not admit it in time, or the
// caller gave up. Skipped lookups are not memoized.
var ErrSkipped = errors.New("enrichment lookup skipped")

// errServer is returned to the breaker for answers that indicate the API
// itself is unhealthy.
var errServer = errors.New("every.org server error")

// Fetcher resolves one EIN. A nil Detail with a nil error is a definite
// negative and is safe to memoize.
type Fetcher interface {
	Fetch(ctx context.Context, ein string) (*Detail, error)
}

// Client talks to the Every.org partners API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker
}

// NewClient builds a client from the enrichment configuration. A zero
// RateLimit disables outbound rate limiting.
func NewClient(cfg *config.EnrichmentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		breaker: newBreaker(breakerName),
	}
}

// Fetch looks up ein. Transport failures, error statuses, undecodable
// bodies and records without a nonprofit object all yield (nil, nil).
// The whole call, including the wait for a rate limiter token, is bounded
// by the configured timeout.
func (c *Client) Fetch(ctx context.Context, ein string) (*Detail, error) {
	ein = strings.TrimSpace(ein)
	if ein == "" {
		return nil, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		metrics.RecordEnrichmentFetch("rejected", 0)
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrSkipped, err)
	}

	detail, err := c.breaker.execute(func() (*Detail, error) {
		return c.lookup(callCtx, ein)
	})
	switch {
	case err == nil:
		return detail, nil
	case isRejection(err):
		metrics.RecordEnrichmentFetch("rejected", 0)
		return nil, fmt.Errorf("%w: %w", ErrSkipped, err)
	case ctx.Err() != nil:
		return nil, fmt.Errorf("%w: %w", ErrSkipped, ctx.Err())
	default:
		logging.Ctx(ctx).Debug().Err(err).Str("ein", ein).Msg("Every.org lookup failed, treating as no match")
		return nil, nil
	}
}

// lookup performs the HTTP round trip. It returns an error only for
// failures that should count against the breaker.
func (c *Client) lookup(ctx context.Context, ein string) (*Detail, error) {
	reqURL := c.baseURL + "/v0.2/nonprofit/" + url.PathEscape(ein) + "?apiKey=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordEnrichmentFetch("transport_error", time.Since(start))
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		elapsed := time.Since(start)
		if resp.StatusCode == http.StatusNotFound {
			metrics.RecordEnrichmentFetch("not_found", elapsed)
			return nil, nil
		}
		metrics.RecordEnrichmentFetch("http_error", elapsed)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: status %d", errServer, resp.StatusCode)
		}
		logging.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("ein", ein).Msg("Every.org rejected lookup")
		return nil, nil
	}

	var payload struct {
		Data struct {
			Nonprofit map[string]any `json:"nonprofit"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		metrics.RecordEnrichmentFetch("decode_error", time.Since(start))
		logging.Ctx(ctx).Debug().Err(err).Str("ein", ein).Msg("Every.org response is not valid JSON")
		return nil, nil
	}
	if len(payload.Data.Nonprofit) == 0 {
		metrics.RecordEnrichmentFetch("not_found", time.Since(start))
		return nil, nil
	}

	metrics.RecordEnrichmentFetch("found", time.Since(start))
	return detailFromNonprofit(payload.Data.Nonprofit), nil
}
