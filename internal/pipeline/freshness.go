package pipeline

import "time"

// IsFresh reports whether a row last written at updatedAt may still be
// served at now. The window is half-open: exactly ttl old is stale.
func IsFresh(updatedAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(updatedAt) < ttl
}
