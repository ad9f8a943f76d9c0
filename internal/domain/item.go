package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryCap bounds the number of price points kept per item.
// The oldest point is evicted when a new one is recorded.
const HistoryCap = 5

// Status text values for the latest observed change.
const (
	StatusStable    = "stable"
	StatusDropped   = "dropped"
	StatusIncreased = "increased"
	StatusUnknown   = "unknown"
)

// PricePoint is a single observed price with its observation time.
type PricePoint struct {
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
}

// TrackedItem represents a catalog listing monitored on behalf of a user.
type TrackedItem struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier (UUID).
	ID string

	// OwnerID identifies the user tracking this item.
	OwnerID string

	// SourceURL is the listing URL the item was created from.
	SourceURL string

	// ExternalID is the catalog identifier, assigned once on creation.
	// Example: "B08N5WRWNW"
	ExternalID string

	// ─────────────────────────────
	// Descriptive snapshot
	// ─────────────────────────────

	Title    string
	Brand    string
	ImageURL string
	Note     string

	// ─────────────────────────────
	// Price state
	// ─────────────────────────────

	// CurrentPrice is the most recently observed price. Nil until the
	// first successful observation.
	CurrentPrice *decimal.Decimal

	// PreviousPrice is the second-most-recent distinct price point.
	// Unchanged fetches never shift it.
	PreviousPrice *decimal.Decimal

	// LowestPrice is the minimum over PriceHistory and CurrentPrice.
	LowestPrice *decimal.Decimal

	// ReferenceAvg is the catalog's rolling average at the last
	// observation. Used for change classification and savings.
	ReferenceAvg *decimal.Decimal

	// PriceHistory holds the recent distinct price points, newest first,
	// at most HistoryCap entries.
	PriceHistory []PricePoint

	// StatusText classifies the latest change: stable, dropped,
	// increased or unknown.
	StatusText string

	// ─────────────────────────────
	// Flags & lifecycle
	// ─────────────────────────────

	NotificationsEnabled bool
	Deleted              bool
	Purchased            bool

	// AutoRemove soft-deletes the item when its price has not moved for
	// the auto-removal window.
	AutoRemove bool

	// SavedAmount is the difference between the reference average and
	// the price at purchase time. Zero unless Purchased.
	SavedAmount decimal.Decimal

	// Alternatives holds substitute listings discovered by the stale
	// sweep, unique by ExternalID. The set only grows until the user
	// clears it.
	Alternatives []AlternativeRef

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AlternativeRef is a substitute listing suggested for a stale item.
type AlternativeRef struct {
	ExternalID  string          `json:"external_id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	ReviewCount int             `json:"review_count"`
	ImageURL    string          `json:"image_url"`
}

// OwnerPrefs are the owner-level notification preferences. Read-only
// to the monitoring engine; all three must allow before a push is sent.
type OwnerPrefs struct {
	OwnerID      string
	PushToken    string
	PushOptedIn  bool
	ConsentGiven bool
}

// HasAlternative reports whether an alternative with the given external
// id is already present.
func (t *TrackedItem) HasAlternative(externalID string) bool {
	for _, alt := range t.Alternatives {
		if alt.ExternalID == externalID {
			return true
		}
	}
	return false
}

// MergeAlternatives unions found into existing by ExternalID. Existing
// entries are kept as-is, never overwritten.
func MergeAlternatives(existing, found []AlternativeRef) []AlternativeRef {
	seen := make(map[string]bool, len(existing))
	merged := make([]AlternativeRef, 0, len(existing)+len(found))
	for _, alt := range existing {
		if seen[alt.ExternalID] {
			continue
		}
		seen[alt.ExternalID] = true
		merged = append(merged, alt)
	}
	for _, alt := range found {
		if seen[alt.ExternalID] {
			continue
		}
		seen[alt.ExternalID] = true
		merged = append(merged, alt)
	}
	return merged
}
