// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

// Package categories maps user-facing interest codes (for example "D0",
// animal welfare) to the NTEE codes stored in the catalog.
//
// The table is loaded once at startup and never mutated, so a Mapper is
// safe for concurrent use without locking.
package categories

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed generic_to_ntee.yaml
var defaultTable []byte

// Mapper resolves interest codes to ordered NTEE code sets.
type Mapper struct {
	table map[string][]string
	codes []string
}

// New builds a Mapper from a raw table. Keys and values are normalized and
// duplicate NTEE codes within one entry are dropped, keeping the first.
func New(table map[string][]string) *Mapper {
	m := &Mapper{table: make(map[string][]string, len(table))}
	for key, values := range table {
		code := NormalizeCode(key)
		if code == "" {
			continue
		}
		m.table[code] = dedupe(values)
		m.codes = append(m.codes, code)
	}
	sort.Strings(m.codes)
	return m
}

// Default returns the Mapper built from the embedded table.
func Default() (*Mapper, error) {
	return load(bytesProvider(defaultTable))
}

// Load reads the table from a YAML file, or the embedded table when path is empty.
func Load(path string) (*Mapper, error) {
	if path == "" {
		return Default()
	}
	m, err := load(file.Provider(path))
	if err != nil {
		return nil, fmt.Errorf("load category table %s: %w", path, err)
	}
	return m, nil
}

func load(p koanf.Provider) (*Mapper, error) {
	// "." never appears in interest codes; use a delimiter that cannot collide anyway.
	k := koanf.New("|")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse category table: %w", err)
	}
	table := make(map[string][]string)
	if err := k.Unmarshal("", &table); err != nil {
		return nil, fmt.Errorf("decode category table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("category table is empty")
	}
	return New(table), nil
}

// NormalizeCode trims and uppercases an interest or NTEE code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve returns the NTEE codes for an interest code, or nil when the code
// is unknown. The returned slice is a copy.
func (m *Mapper) Resolve(code string) []string {
	values, ok := m.table[NormalizeCode(code)]
	if !ok {
		return nil
	}
	return append([]string(nil), values...)
}

// ResolveMany unions the NTEE codes of several interest codes, keeping first
// appearance order. Unknown codes contribute nothing.
func (m *Mapper) ResolveMany(codes ...string) []string {
	var all []string
	for _, code := range codes {
		all = append(all, m.table[NormalizeCode(code)]...)
	}
	return dedupe(all)
}

// Known reports whether code is in the table.
func (m *Mapper) Known(code string) bool {
	_, ok := m.table[NormalizeCode(code)]
	return ok
}

// Codes returns the known interest codes in sorted order.
func (m *Mapper) Codes() []string {
	return append([]string(nil), m.codes...)
}

// Len returns the number of interest codes.
func (m *Mapper) Len() int {
	return len(m.table)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = NormalizeCode(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// bytesProvider serves the embedded table to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) {
	return b, nil
}

func (b bytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("bytesProvider does not support Read")
}
