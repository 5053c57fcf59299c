// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/map9900/charity-finder/internal/config"
	"github.com/map9900/charity-finder/internal/logging"
)

// RedisStore shares resolved lookups between replicas. Entries expire
// after the configured TTL; zero keeps them forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to cfg.RedisAddr and verifies the connection.
func NewRedisStore(ctx context.Context, cfg *config.EnrichmentConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logging.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Enrichment store connected to Redis")
	return NewRedisStoreWithClient(client, cfg.RedisTTL), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, ein string) (*Detail, bool, error) {
	data, err := s.client.Get(ctx, storeKey(ein)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	detail, err := decodeEntry(data)
	if err != nil {
		return nil, false, err
	}
	return detail, true, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, ein string, detail *Detail) error {
	data, err := encodeEntry(detail)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, storeKey(ein), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
