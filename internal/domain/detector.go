package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoPriceData indicates the catalog record carried no usable price.
// The item is skipped for the cycle, never deleted.
var ErrNoPriceData = errors.New("domain: no price data in catalog record")

// NotificationTier selects the notification template for a change.
type NotificationTier int

const (
	TierNone NotificationTier = iota
	TierDrop
	TierIncrease
)

// Observation is the price view of a fresh catalog record, extracted at
// the adapter boundary so the detector never touches raw payloads.
type Observation struct {
	// Price is the current listing price, nil when the catalog reports
	// the item as unavailable.
	Price *decimal.Decimal

	// ReferenceAvg is the rolling average price over the catalog's
	// stats window, nil when absent.
	ReferenceAvg *decimal.Decimal
}

// ChangeResult describes the new item state and the notification to
// send, if any. It carries no side effects: the caller applies the
// mutation, invalidates caches and dispatches.
type ChangeResult struct {
	Changed    bool
	Item       TrackedItem
	NewPrice   decimal.Decimal
	OldPrice   *decimal.Decimal
	Status     string
	Tier       NotificationTier
	ObservedAt time.Time
}

// Detect compares a fresh observation against the stored item state.
//
// An unchanged price is a complete no-op: the returned result carries
// Changed=false and an untouched copy of the item, so unchanged fetches
// never shift history, caches or notifications. A changed price yields
// the updated item (history prepended and capped, lowest and previous
// price recomputed) plus the classification of the move against the
// reference average.
func Detect(prev *TrackedItem, obs Observation, now time.Time) (ChangeResult, error) {
	if obs.Price == nil {
		return ChangeResult{}, ErrNoPriceData
	}
	newPrice := *obs.Price

	if prev.CurrentPrice != nil && newPrice.Equal(*prev.CurrentPrice) {
		return ChangeResult{Changed: false, Item: *prev, NewPrice: newPrice, ObservedAt: now}, nil
	}

	next := *prev
	next.CurrentPrice = &newPrice
	next.PriceHistory = prependCapped(prev.PriceHistory, PricePoint{Price: newPrice, ObservedAt: now})
	next.LowestPrice = lowestOf(next.PriceHistory)

	if len(next.PriceHistory) > 1 {
		p := next.PriceHistory[1].Price
		next.PreviousPrice = &p
	} else {
		next.PreviousPrice = &newPrice
	}

	status, tier := classify(newPrice, obs.ReferenceAvg, prev.ReferenceAvg)
	next.StatusText = status
	if obs.ReferenceAvg != nil {
		ref := *obs.ReferenceAvg
		next.ReferenceAvg = &ref
	}
	next.UpdatedAt = now

	return ChangeResult{
		Changed:    true,
		Item:       next,
		NewPrice:   newPrice,
		OldPrice:   prev.CurrentPrice,
		Status:     status,
		Tier:       tier,
		ObservedAt: now,
	}, nil
}

// classify compares the new price against the reference average. The
// fresh record's average wins; the previously stored one is the
// fallback. Absent on both sides means the direction is unknown and no
// directional notification is produced.
func classify(newPrice decimal.Decimal, fresh, stored *decimal.Decimal) (string, NotificationTier) {
	ref := fresh
	if ref == nil {
		ref = stored
	}
	if ref == nil {
		return StatusUnknown, TierNone
	}
	switch newPrice.Cmp(*ref) {
	case -1:
		return StatusDropped, TierDrop
	case 1:
		return StatusIncreased, TierIncrease
	default:
		return StatusStable, TierNone
	}
}

func prependCapped(history []PricePoint, p PricePoint) []PricePoint {
	next := make([]PricePoint, 0, HistoryCap)
	next = append(next, p)
	for _, old := range history {
		if len(next) == HistoryCap {
			break
		}
		next = append(next, old)
	}
	return next
}

func lowestOf(history []PricePoint) *decimal.Decimal {
	if len(history) == 0 {
		return nil
	}
	low := history[0].Price
	for _, p := range history[1:] {
		if p.Price.LessThan(low) {
			low = p.Price
		}
	}
	return &low
}
