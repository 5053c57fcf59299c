// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

// Package services adapts long-running components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into a context-driven
// Serve. BadgerGCService runs value log garbage collection for the badger
// enrichment store on a fixed interval.
package services
