// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage is the image used by StartRedis.
	DefaultRedisImage = "redis:7-alpine"

	redisPort = "6379/tcp"
)

// RedisContainer is a running Redis server.
type RedisContainer struct {
	Container testcontainers.Container
	Addr      string
}

// StartRedis starts Redis and registers its termination with t.Cleanup.
func StartRedis(t *testing.T) *RedisContainer {
	t.Helper()
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        DefaultRedisImage,
			ExposedPorts: []string{redisPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(redisPort),
				wait.ForLog("Ready to accept connections"),
			).WithDeadline(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { CleanupContainer(t, container) })

	addr, err := endpoint(ctx, container)
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}
	return &RedisContainer{Container: container, Addr: addr}
}

func endpoint(ctx context.Context, container testcontainers.Container) (string, error) {
	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get host: %w", err)
	}
	port, err := container.MappedPort(ctx, redisPort)
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}
	return net.JoinHostPort(host, port.Port()), nil
}
