// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package enrich

import (
	"strings"

	"github.com/map9900/charity-finder/internal/models"
)

// Detail is the subset of an Every.org nonprofit record we merge into a
// charity. Empty fields mean the API did not provide a value.
type Detail struct {
	ProfileURL  string `json:"profileUrl,omitempty"`
	WebsiteURL  string `json:"websiteUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	NTEECode    string `json:"nteeCode,omitempty"`
}

// detailFromNonprofit extracts a Detail from the raw "nonprofit" object,
// taking the first non-empty string among each field's known aliases.
func detailFromNonprofit(np map[string]any) *Detail {
	return &Detail{
		ProfileURL:  firstString(np, "profileUrl", "profile", "url"),
		WebsiteURL:  firstString(np, "websiteUrl", "website"),
		Description: firstString(np, "description", "mission"),
		Location:    firstString(np, "location", "locationName"),
		NTEECode:    firstString(np, "nteeCode"),
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// Apply merges d into c. A field is overwritten only when d carries a
// non-empty value for it. A nil d leaves c untouched.
func Apply(c *models.Charity, d *Detail) {
	if c == nil || d == nil {
		return
	}
	if d.ProfileURL != "" {
		c.ProfileURL = d.ProfileURL
	}
	if d.WebsiteURL != "" {
		c.WebsiteURL = d.WebsiteURL
	}
	if d.Description != "" {
		c.Description = d.Description
	}
	if d.Location != "" {
		c.Location = d.Location
	}
	if d.NTEECode != "" {
		c.NTEECode = d.NTEECode
	}
}
