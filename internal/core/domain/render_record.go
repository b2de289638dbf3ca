package domain

import "time"

// RenderRecord is what a consumer remembers about a template it has processed.
// The cache key and timestamp are later compared against the loader chain to
// decide whether the processed artifact is still valid.
type RenderRecord struct {
	Name      string    `json:"name,omitzero"`
	CacheKey  string    `json:"cache_key,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Freshness classifies a template against its RenderRecord.
type Freshness string

const (
	// FreshnessNew means no record exists for the template.
	FreshnessNew Freshness = "new"
	// FreshnessFresh means the record's cache key matches and the loader reports it fresh.
	FreshnessFresh Freshness = "fresh"
	// FreshnessStale means the cache key changed or the loader reports a newer template.
	FreshnessStale Freshness = "stale"
	// FreshnessMissing means no loader in the chain serves the template anymore.
	FreshnessMissing Freshness = "missing"
)
