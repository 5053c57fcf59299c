// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps resolved lookups in BadgerDB so a restart does not
// repeat them.
type BadgerStore struct {
	db     *badger.DB
	closer bool
}

// OpenBadgerStore opens (or creates) a BadgerDB directory at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for enrichment: %w", err)
	}
	return &BadgerStore{db: db, closer: true}, nil
}

// NewBadgerStore wraps a database owned by the caller. Close does not
// close it.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, ein string) (*Detail, bool, error) {
	var (
		detail *Detail
		found  bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(storeKey(ein)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get enrichment entry: %w", err)
		}
		return item.Value(func(val []byte) error {
			d, err := decodeEntry(val)
			if err != nil {
				return err
			}
			detail, found = d, true
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return detail, found, nil
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, ein string, detail *Detail) error {
	data, err := encodeEntry(detail)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(storeKey(ein)), data)
	})
}

// RunGC reclaims value log space. It returns nil when there was nothing
// to rewrite or the database has no value log.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	err := s.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if !s.closer {
		return nil
	}
	return s.db.Close()
}
