// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/map9900/charity-finder/internal/models"
)

// fakeFetcher answers from a fixed table and counts calls per EIN.
type fakeFetcher struct {
	mu      sync.Mutex
	details map[string]*Detail
	errs    map[string]error
	calls   map[string]int
	delay   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeFetcher(details map[string]*Detail) *fakeFetcher {
	return &fakeFetcher{details: details, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, ein string) (*Detail, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ein]++
	if err := f.errs[ein]; err != nil {
		return nil, err
	}
	return f.details[ein], nil
}

func (f *fakeFetcher) callCount(ein string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ein]
}

func TestCache_GetOrFetch_MemoizesPositive(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]*Detail{"1": {WebsiteURL: "https://one.org"}})
	cache := NewCache(fetcher, nil)

	for i := 0; i < 3; i++ {
		got := cache.GetOrFetch(context.Background(), "1")
		if got == nil || got.WebsiteURL != "https://one.org" {
			t.Fatalf("GetOrFetch() = %+v", got)
		}
	}
	if n := fetcher.callCount("1"); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}

	stats := cache.Stats()
	if stats.Entries != 1 || stats.Hits != 2 || stats.Misses != 1 || stats.Negatives != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCache_GetOrFetch_MemoizesNegative(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(nil)
	cache := NewCache(fetcher, nil)

	for i := 0; i < 3; i++ {
		if got := cache.GetOrFetch(context.Background(), "404"); got != nil {
			t.Fatalf("GetOrFetch() = %+v, want nil", got)
		}
	}
	if n := fetcher.callCount("404"); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
	if cache.Len() != 1 || cache.Stats().Negatives != 1 {
		t.Errorf("Len() = %d, Stats() = %+v", cache.Len(), cache.Stats())
	}
}

func TestCache_GetOrFetch_SkippedNotMemoized(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(nil)
	fetcher.errs["9"] = fmt.Errorf("%w: open circuit", ErrSkipped)
	cache := NewCache(fetcher, nil)

	cache.GetOrFetch(context.Background(), "9")
	cache.GetOrFetch(context.Background(), "9")

	if n := fetcher.callCount("9"); n != 2 {
		t.Errorf("fetch calls = %d, want 2", n)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestCache_GetOrFetch_EmptyEIN(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(nil)
	cache := NewCache(fetcher, nil)

	if got := cache.GetOrFetch(context.Background(), " "); got != nil {
		t.Errorf("GetOrFetch() = %+v, want nil", got)
	}
	if n := fetcher.callCount(""); n != 0 {
		t.Errorf("fetch calls = %d, want 0", n)
	}
}

func TestCache_GetOrFetch_Concurrent(t *testing.T) {
	t.Parallel()

	details := make(map[string]*Detail)
	for i := 0; i < 200; i++ {
		ein := fmt.Sprintf("%09d", i)
		details[ein] = &Detail{ProfileURL: "https://every.org/" + ein}
	}
	fetcher := newFakeFetcher(details)
	cache := NewCache(fetcher, nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ein, want := range details {
				got := cache.GetOrFetch(context.Background(), ein)
				if got == nil || got.ProfileURL != want.ProfileURL {
					t.Errorf("GetOrFetch(%s) = %+v", ein, got)
				}
			}
		}()
	}
	wg.Wait()

	if cache.Len() != len(details) {
		t.Errorf("Len() = %d, want %d", cache.Len(), len(details))
	}
	// Once every goroutine is done, nothing is fetched again.
	for ein := range details {
		before := fetcher.callCount(ein)
		cache.GetOrFetch(context.Background(), ein)
		if fetcher.callCount(ein) != before {
			t.Fatalf("EIN %s re-fetched after resolution", ein)
		}
	}
}

// memStore is a Store test double that can be told to fail.
type memStore struct {
	mu      sync.Mutex
	entries map[string]*Detail
	fail    bool
	puts    int
}

func newMemStore() *memStore { return &memStore{entries: map[string]*Detail{}} }

func (s *memStore) Get(_ context.Context, ein string) (*Detail, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, false, errors.New("store down")
	}
	d, ok := s.entries[ein]
	return d, ok, nil
}

func (s *memStore) Put(_ context.Context, ein string, d *Detail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("store down")
	}
	s.puts++
	s.entries[ein] = d
	return nil
}

func (s *memStore) Close() error { return nil }

func TestCache_Store_WriteThroughAndReadThrough(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	fetcher := newFakeFetcher(map[string]*Detail{"1": {WebsiteURL: "https://one.org"}})

	first := NewCache(fetcher, store)
	first.GetOrFetch(context.Background(), "1")
	first.GetOrFetch(context.Background(), "2")
	if store.puts != 2 {
		t.Fatalf("store puts = %d, want 2 (positive and negative)", store.puts)
	}

	// A fresh cache, as after a restart, answers from the store.
	second := NewCache(fetcher, store)
	if got := second.GetOrFetch(context.Background(), "1"); got == nil || got.WebsiteURL != "https://one.org" {
		t.Errorf("GetOrFetch(1) = %+v", got)
	}
	if got := second.GetOrFetch(context.Background(), "2"); got != nil {
		t.Errorf("GetOrFetch(2) = %+v, want nil", got)
	}
	if fetcher.callCount("1") != 1 || fetcher.callCount("2") != 1 {
		t.Errorf("store hit still fetched: calls 1=%d 2=%d", fetcher.callCount("1"), fetcher.callCount("2"))
	}
}

func TestCache_Store_ErrorsIgnored(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.fail = true
	fetcher := newFakeFetcher(map[string]*Detail{"1": {WebsiteURL: "https://one.org"}})
	cache := NewCache(fetcher, store)

	if got := cache.GetOrFetch(context.Background(), "1"); got == nil {
		t.Fatal("GetOrFetch() = nil, want detail despite store failure")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestCache_EnrichAll(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]*Detail{
		"1": {WebsiteURL: "https://one.org", Description: "One"},
		"3": {Location: "Elsewhere"},
	})
	fetcher.delay = 5 * time.Millisecond
	cache := NewCache(fetcher, nil)

	charities := []models.Charity{
		{Name: "One", EIN: "1", NTEECode: "D20", Location: "Austin, TX"},
		{Name: "Two", EIN: "2", NTEECode: "D20", Location: "Dallas, TX"},
		{Name: "Three", EIN: "3", NTEECode: "D40"},
		{Name: "No EIN", NTEECode: "D40"},
	}
	for i := 0; i < 20; i++ {
		charities = append(charities, models.Charity{Name: "Filler", EIN: fmt.Sprintf("f%d", i)})
	}

	cache.EnrichAll(context.Background(), charities, 3)

	if charities[0].WebsiteURL != "https://one.org" || charities[0].Description != "One" || charities[0].Location != "Austin, TX" {
		t.Errorf("charity 1 = %+v", charities[0])
	}
	if charities[1].WebsiteURL != "" || charities[1].Location != "Dallas, TX" {
		t.Errorf("charity 2 should be unchanged, got %+v", charities[1])
	}
	if charities[2].Location != "Elsewhere" {
		t.Errorf("charity 3 location = %q", charities[2].Location)
	}
	if fetcher.callCount("") != 0 {
		t.Error("charity without EIN was looked up")
	}
	if peak := fetcher.maxInFlight.Load(); peak > 3 {
		t.Errorf("max concurrent lookups = %d, want <= 3", peak)
	}
}

func TestCache_EnrichAll_Empty(t *testing.T) {
	t.Parallel()
	cache := NewCache(newFakeFetcher(nil), nil)
	cache.EnrichAll(context.Background(), nil, 4)
}

func TestShardFor_Stable(t *testing.T) {
	t.Parallel()
	cache := NewCache(newFakeFetcher(nil), nil)
	if cache.shardFor("12-3456789") != cache.shardFor("12-3456789") {
		t.Error("shardFor is not stable")
	}
}
