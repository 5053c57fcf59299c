// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

// Package models holds the types shared between the selection pipeline,
// the enrichment layer and the HTTP API.
package models

import (
	"strings"

	"github.com/goccy/go-json"
)

// Charity is a catalog row projected for output, optionally enriched with
// Every.org metadata. Empty optional fields serialize as JSON null.
type Charity struct {
	Name        string
	EIN         string
	ProfileURL  string
	WebsiteURL  string
	NTEECode    string
	Location    string
	Description string
}

type charityJSON struct {
	Name        string  `json:"name"`
	EIN         *string `json:"ein"`
	ProfileURL  *string `json:"profileUrl"`
	WebsiteURL  *string `json:"websiteUrl"`
	NTEECode    string  `json:"nteeCode"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

// MarshalJSON writes the camelCase wire format used by the front-end.
func (c Charity) MarshalJSON() ([]byte, error) {
	return json.Marshal(charityJSON{
		Name:        c.Name,
		EIN:         nullable(c.EIN),
		ProfileURL:  nullable(c.ProfileURL),
		WebsiteURL:  nullable(c.WebsiteURL),
		NTEECode:    c.NTEECode,
		Location:    nullable(c.Location),
		Description: nullable(c.Description),
	})
}

// UnmarshalJSON reads the wire format; null becomes "".
func (c *Charity) UnmarshalJSON(data []byte) error {
	var w charityJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Charity{
		Name:        w.Name,
		EIN:         deref(w.EIN),
		ProfileURL:  deref(w.ProfileURL),
		WebsiteURL:  deref(w.WebsiteURL),
		NTEECode:    w.NTEECode,
		Location:    deref(w.Location),
		Description: deref(w.Description),
	}
	return nil
}

// DedupKey is the identity used to keep a charity from appearing twice in
// one result: the EIN, else the profile URL, else "name-nteeCode".
func (c Charity) DedupKey() string {
	if ein := strings.TrimSpace(c.EIN); ein != "" {
		return ein
	}
	if profile := strings.TrimSpace(c.ProfileURL); profile != "" {
		return profile
	}
	return c.Name + "-" + c.NTEECode
}

// HasWebsite reports whether a website link is known.
func (c Charity) HasWebsite() bool {
	return strings.TrimSpace(c.WebsiteURL) != ""
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
