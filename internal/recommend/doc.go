// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

/*
Package recommend turns an interest code into a short, diverse list of
charities.

The pipeline for a recommendation is:

 1. resolve the interest code to NTEE categories (categories.Mapper)
 2. read a random candidate pool from the catalog (catalog.Gateway)
 3. group the pool by category (GroupByCategory)
 4. pick candidates round-robin across categories, skipping duplicates (Select)
 5. enrich the picks with Every.org metadata (enrich.Cache)

The daily featured list reads a larger pool with a date seed, enriches it,
and keeps a deterministic sample of the charities that have a website
(Sample). A given date always produces the same list while the catalog
and the enrichment data are unchanged.

Everything except the enrichment cache is built per call; nothing in this
package mutates its inputs.
*/
package recommend
