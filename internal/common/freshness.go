// Package common provides shared utilities for the aggregation service
package common

import "time"

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(observed time.Time, ttl time.Duration) bool {
	if observed.IsZero() {
		return false
	}
	return time.Since(observed) < ttl
}
