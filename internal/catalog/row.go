// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package catalog

import "strings"

// Row is one catalog record. Rows are never mutated after a query returns them.
type Row struct {
	EIN       string
	Name      string
	City      string
	State     string
	NTEECode  string
	NTEEMajor string
}

// Location renders "city, state", "state", or "" when neither is known.
// A city without a state is not shown.
func (r Row) Location() string {
	city := strings.TrimSpace(r.City)
	state := strings.TrimSpace(r.State)
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case state != "":
		return state
	default:
		return ""
	}
}

// NormalizeRegion returns the uppercased region filter, or "" for no filter.
// Empty input and the literal "any" (any case) both mean no filter.
func NormalizeRegion(region string) string {
	region = strings.TrimSpace(region)
	if region == "" || strings.EqualFold(region, "any") {
		return ""
	}
	return strings.ToUpper(region)
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
