// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "modernc.org/sqlite"

	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/logging"
	"github.com/map9900/charity-finder/internal/metrics"
)

const (
	tableName = "charities"

	// seededOrderModulus is a prime used to derive a seed-dependent row order.
	seededOrderModulus = 2147483647
)

// Gateway queries the charities table. It is safe for concurrent use.
type Gateway struct {
	db           *sql.DB
	driver       string
	queryTimeout time.Duration
}

// Open opens the catalog read-only and verifies it answers a ping.
func Open(cfg *config.CatalogConfig) (*Gateway, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: database not found at %s: %w", ErrUnavailable, cfg.Path, err)
	}

	dsn, err := readOnlyDSN(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxIdleTime(10 * time.Minute)

	g := NewGateway(db, cfg.Driver, cfg.QueryTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.Ping(ctx); err != nil {
		closeQuietly(db)
		return nil, err
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Str("path", cfg.Path).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Catalog opened read-only")
	return g, nil
}

// NewGateway wraps an already opened handle. queryTimeout <= 0 disables the
// per-query deadline.
func NewGateway(db *sql.DB, driver string, queryTimeout time.Duration) *Gateway {
	return &Gateway{db: db, driver: driver, queryTimeout: queryTimeout}
}

func readOnlyDSN(driver, path string) (string, error) {
	switch driver {
	case "sqlite":
		return "file:" + path + "?mode=ro", nil
	case "duckdb":
		return path + "?access_mode=read_only", nil
	default:
		return "", fmt.Errorf("%w: unsupported driver %q", ErrUnavailable, driver)
	}
}

// Close releases the connection pool.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Ping checks that the store is reachable and the charities table exists.
func (g *Gateway) Ping(ctx context.Context) error {
	var n int
	err := g.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM (SELECT 1 FROM "+tableName+" LIMIT 1) t").Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return nil
}

// FetchPool returns up to poolSize rows whose NTEE code is in codes.
//
// Region follows NormalizeRegion; a region that matches nothing falls back
// to the unfiltered query. Without a seed the order is the store's random
// order. With a seed the rows are read in a seed-derived order and then
// shuffled by SeededReorder, so the same seed always yields the same pool
// for an unchanged catalog.
func (g *Gateway) FetchPool(ctx context.Context, codes []string, region string, poolSize int, seed *int64) ([]Row, error) {
	if poolSize <= 0 {
		return nil, nil
	}
	codes = normalizeCodes(codes)
	if len(codes) == 0 {
		return nil, nil
	}

	limit := max(poolSize*3, poolSize)
	rows, err := g.queryWithFallback(ctx, "ntee_code", codes, region, limit, seed)
	if err != nil {
		return nil, err
	}

	if seed != nil {
		rows = SeededReorder(rows, *seed)
	}
	if len(rows) > poolSize {
		rows = rows[:poolSize]
	}
	return rows, nil
}

// FetchByMajor returns up to limit rows in the given NTEE major groups in
// random order, with the same region fallback as FetchPool.
func (g *Gateway) FetchByMajor(ctx context.Context, majors []string, region string, limit int) ([]Row, error) {
	if limit <= 0 {
		return nil, nil
	}
	majors = normalizeCodes(majors)
	if len(majors) == 0 {
		return nil, nil
	}
	return g.queryWithFallback(ctx, "ntee_major", majors, region, limit, nil)
}

// Count returns how many rows match codes in region. No fallback is applied.
func (g *Gateway) Count(ctx context.Context, codes []string, region string) (int, error) {
	codes = normalizeCodes(codes)
	if len(codes) == 0 {
		return 0, nil
	}

	where, args := whereClause("ntee_code", codes, NormalizeRegion(region))
	query := "SELECT COUNT(*) FROM " + tableName + " WHERE " + where

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var n int
	err := g.db.QueryRowContext(ctx, query, args...).Scan(&n)
	metrics.RecordDBQuery("count", tableName, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrUnavailable, err)
	}
	return n, nil
}

// queryWithFallback runs the region-filtered query first and only drops the
// filter when it returns no rows. A non-empty filtered result is returned
// as is.
func (g *Gateway) queryWithFallback(ctx context.Context, column string, values []string, region string, limit int, seed *int64) ([]Row, error) {
	state := NormalizeRegion(region)
	if state != "" {
		rows, err := g.query(ctx, column, values, state, limit, seed)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
		metrics.CatalogFallbacks.WithLabelValues(column).Inc()
		logging.Ctx(ctx).Debug().
			Str("column", column).
			Str("region", state).
			Msg("No catalog rows in region, retrying without region filter")
	}
	return g.query(ctx, column, values, "", limit, seed)
}

func (g *Gateway) query(ctx context.Context, column string, values []string, state string, limit int, seed *int64) ([]Row, error) {
	where, args := whereClause(column, values, state)

	order := "RANDOM()"
	if seed != nil {
		order = "((rowid * ?) % ?), rowid"
		args = append(args, seededMultiplier(*seed), seededOrderModulus)
	}
	args = append(args, limit)

	query := "SELECT ein, name, city, state, ntee_code, ntee_major FROM " + tableName +
		" WHERE " + where + " ORDER BY " + order + " LIMIT ?"

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rows, err := g.scan(ctx, query, args)
	metrics.RecordDBQuery("select_by_"+column, tableName, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: query by %s: %w", ErrUnavailable, column, err)
	}
	return rows, nil
}

func (g *Gateway) scan(ctx context.Context, query string, args []any) ([]Row, error) {
	rs, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rs)

	var out []Row
	for rs.Next() {
		var ein, name, city, state, code, major sql.NullString
		if err := rs.Scan(&ein, &name, &city, &state, &code, &major); err != nil {
			return nil, err
		}
		out = append(out, Row{
			EIN:       ein.String,
			Name:      name.String,
			City:      city.String,
			State:     state.String,
			NTEECode:  code.String,
			NTEEMajor: major.String,
		})
	}
	return out, rs.Err()
}

func whereClause(column string, values []string, state string) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	args := make([]any, 0, len(values)+3)
	for _, v := range values {
		args = append(args, v)
	}
	where := column + " IN (" + placeholders + ")"
	if state != "" {
		where += " AND state = ?"
		args = append(args, state)
	}
	return where, args
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.queryTimeout)
}

// seededMultiplier maps a seed to a multiplier in [1, modulus) that is
// never a multiple of the modulus, so rowid order is actually permuted.
func seededMultiplier(seed int64) int64 {
	m := seed % seededOrderModulus
	if m < 0 {
		m += seededOrderModulus
	}
	if m == 0 {
		m = 1
	}
	return m
}

// SeededReorder returns a copy of rows shuffled deterministically by seed.
// The input slice is left untouched.
func SeededReorder(rows []Row, seed int64) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic shuffle, not security sensitive
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
