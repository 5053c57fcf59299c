// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

//go:build integration

// Package testinfra starts throwaway containers for integration tests.
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/enrich/...
//
// Tests skip themselves when no Docker daemon is reachable.
package testinfra
