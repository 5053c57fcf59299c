// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package catalog

import (
	"errors"
	"io"
)

// ErrUnavailable marks failures to open or query the catalog store.
// Callers treat it as fatal for the current request.
var ErrUnavailable = errors.New("catalog unavailable")

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
