package domain

import "time"

const (
	// DefaultStaleWindow is the observation window for the stale-item
	// sweep: no distinct price inside it means the item qualifies for
	// alternative discovery.
	DefaultStaleWindow = 7 * 24 * time.Hour

	// DefaultAutoRemoveAfter is how long a flagged item may sit without
	// a price move before the sweep soft-deletes it.
	DefaultAutoRemoveAfter = 30 * 24 * time.Hour
)

// PriceStaleFor reports whether the item's price has been static for at
// least window. History records only distinct prices, so the newest
// point marks the last time the price moved (or the item was created).
// An item with no observations yet is not stale.
func PriceStaleFor(history []PricePoint, window time.Duration, now time.Time) bool {
	if len(history) == 0 {
		return false
	}
	return now.Sub(history[0].ObservedAt) >= window
}
