// Package common provides shared utilities for LaneView
package common

import "time"

// Freshness TTLs for market snapshot components
const (
	FreshnessQuote        = 1 * time.Hour
	FreshnessFundamentals = 7 * 24 * time.Hour // 7 days
	FreshnessHistory      = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
