// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

// Package catalogtest builds throwaway catalog databases for tests.
package catalogtest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/config"
)

const createTableSQL = `CREATE TABLE charities (
	ein TEXT,
	name TEXT,
	city TEXT,
	state TEXT,
	ntee_code TEXT,
	ntee_major TEXT
)`

// Build writes rows into a fresh database file and returns its path.
func Build(t testing.TB, driver string, rows []catalog.Row) string {
	t.Helper()

	name := "charities.db"
	if driver == "duckdb" {
		name = "charities.duckdb"
	}
	path := filepath.Join(t.TempDir(), name)

	db, err := sql.Open(driver, path)
	if err != nil {
		t.Fatalf("open %s: %v", driver, err)
	}
	defer db.Close()

	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, r := range rows {
		_, err := db.Exec(
			"INSERT INTO charities (ein, name, city, state, ntee_code, ntee_major) VALUES (?, ?, ?, ?, ?, ?)",
			nullable(r.EIN), nullable(r.Name), nullable(r.City), nullable(r.State), nullable(r.NTEECode), nullable(r.NTEEMajor),
		)
		if err != nil {
			t.Fatalf("insert %+v: %v", r, err)
		}
	}
	return path
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Open builds a catalog from rows and opens it read-only through the
// gateway. The gateway is closed when the test ends.
func Open(t testing.TB, driver string, rows []catalog.Row) *catalog.Gateway {
	t.Helper()

	path := Build(t, driver, rows)
	g, err := catalog.Open(&config.CatalogConfig{
		Driver:       driver,
		Path:         path,
		MaxOpenConns: 4,
		QueryTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Open(%s) error = %v", driver, err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

// SampleRows returns 12 D20/D40 rows across CA, NY and TX plus two B20
// rows. One TX row has no EIN and no city.
func SampleRows() []catalog.Row {
	return []catalog.Row{
		{EIN: "100000001", Name: "Bay Animal Rescue", City: "Oakland", State: "CA", NTEECode: "D20", NTEEMajor: "D"},
		{EIN: "100000002", Name: "Coastal Wildlife", City: "Monterey", State: "CA", NTEECode: "D40", NTEEMajor: "D"},
		{EIN: "100000003", Name: "Sierra Shelter", City: "Fresno", State: "CA", NTEECode: "D20", NTEEMajor: "D"},
		{EIN: "100000004", Name: "Valley Pets", State: "CA", NTEECode: "D40", NTEEMajor: "D"},
		{EIN: "200000001", Name: "Hudson Humane", City: "Albany", State: "NY", NTEECode: "D20", NTEEMajor: "D"},
		{EIN: "200000002", Name: "Brooklyn Birds", City: "Brooklyn", State: "NY", NTEECode: "D40", NTEEMajor: "D"},
		{EIN: "200000003", Name: "Catskill Cats", City: "Kingston", State: "NY", NTEECode: "D20", NTEEMajor: "D"},
		{EIN: "200000004", Name: "Empire Dogs", City: "Buffalo", State: "NY", NTEECode: "D40", NTEEMajor: "D"},
		{EIN: "300000001", Name: "Lone Star Strays", City: "Austin", State: "TX", NTEECode: "D20", NTEEMajor: "D"},
		{EIN: "300000002", Name: "Gulf Marine Life", City: "Galveston", State: "TX", NTEECode: "D40", NTEEMajor: "D"},
		{Name: "Unnamed Sanctuary", State: "TX", NTEECode: "D20", NTEEMajor: "D"},
		{EIN: "300000004", Name: "Prairie Horses", City: "Amarillo", State: "TX", NTEECode: "D40", NTEEMajor: "D"},
		{EIN: "400000001", Name: "Reading Together", City: "Oakland", State: "CA", NTEECode: "B20", NTEEMajor: "B"},
		{EIN: "400000002", Name: "School Supplies NY", City: "Albany", State: "NY", NTEECode: "B20", NTEEMajor: "B"},
	}
}
