// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package recommend

import (
	"errors"

	"github.com/map9900/charity-finder/internal/catalog"
)

var (
	// ErrEmptyCode means no interest code was supplied.
	ErrEmptyCode = errors.New("empty interest code")

	// ErrUnknownCode means the interest code is not in the category table.
	ErrUnknownCode = errors.New("unknown interest code")

	// ErrNoResults means the catalog produced nothing to recommend.
	ErrNoResults = errors.New("no charities found")

	// ErrMissingAPIKey means enrichment is not configured.
	ErrMissingAPIKey = errors.New("enrichment API key not configured")

	// ErrCatalogUnavailable is catalog.ErrUnavailable, re-exported so
	// callers only need this package's taxonomy.
	ErrCatalogUnavailable = catalog.ErrUnavailable
)

// RequestError pairs a sentinel with the message shown to API clients.
type RequestError struct {
	Err     error
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

func newRequestError(err error, message string) *RequestError {
	return &RequestError{Err: err, Message: message}
}

// Message returns the client-facing text for err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return fallback
}
