package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestDetectNoPriceData(t *testing.T) {
	item := &TrackedItem{ID: "i1", CurrentPrice: decPtr("100")}

	_, err := Detect(item, Observation{Price: nil}, time.Now())
	if !errors.Is(err, ErrNoPriceData) {
		t.Fatalf("Detect() error = %v, want ErrNoPriceData", err)
	}
}

func TestDetectUnchangedIsNoOp(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	item := &TrackedItem{
		ID:           "i1",
		CurrentPrice: decPtr("90"),
		PriceHistory: []PricePoint{{Price: dec("90"), ObservedAt: t0}},
		StatusText:   StatusDropped,
	}

	res, err := Detect(item, Observation{Price: decPtr("90"), ReferenceAvg: decPtr("95")}, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if res.Changed {
		t.Error("unchanged price reported Changed=true")
	}
	if len(res.Item.PriceHistory) != 1 {
		t.Errorf("unchanged price mutated history: %d entries", len(res.Item.PriceHistory))
	}
	if res.Item.StatusText != StatusDropped {
		t.Errorf("unchanged price mutated status: %q", res.Item.StatusText)
	}
}

func TestDetectPriceDrop(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	now := t0.Add(12 * time.Hour)
	item := &TrackedItem{
		ID:           "i1",
		CurrentPrice: decPtr("100"),
		LowestPrice:  decPtr("100"),
		PriceHistory: []PricePoint{{Price: dec("100"), ObservedAt: t0}},
	}

	res, err := Detect(item, Observation{Price: decPtr("90"), ReferenceAvg: decPtr("95")}, now)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !res.Changed {
		t.Fatal("price drop not detected as change")
	}
	if res.Tier != TierDrop {
		t.Errorf("Tier = %v, want TierDrop", res.Tier)
	}

	got := res.Item
	if got.CurrentPrice == nil || !got.CurrentPrice.Equal(dec("90")) {
		t.Errorf("CurrentPrice = %v, want 90", got.CurrentPrice)
	}
	if got.PreviousPrice == nil || !got.PreviousPrice.Equal(dec("100")) {
		t.Errorf("PreviousPrice = %v, want 100", got.PreviousPrice)
	}
	if got.LowestPrice == nil || !got.LowestPrice.Equal(dec("90")) {
		t.Errorf("LowestPrice = %v, want 90", got.LowestPrice)
	}
	if got.StatusText != StatusDropped {
		t.Errorf("StatusText = %q, want %q", got.StatusText, StatusDropped)
	}
	if len(got.PriceHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(got.PriceHistory))
	}
	if !got.PriceHistory[0].ObservedAt.Equal(now) {
		t.Error("newest history entry does not carry the observation time")
	}
}

func TestDetectClassification(t *testing.T) {
	tests := []struct {
		name       string
		newPrice   string
		freshRef   *decimal.Decimal
		storedRef  *decimal.Decimal
		wantStatus string
		wantTier   NotificationTier
	}{
		{
			name:       "below average is a drop",
			newPrice:   "80",
			freshRef:   decPtr("95"),
			wantStatus: StatusDropped,
			wantTier:   TierDrop,
		},
		{
			name:       "above average is an increase",
			newPrice:   "120",
			freshRef:   decPtr("95"),
			wantStatus: StatusIncreased,
			wantTier:   TierIncrease,
		},
		{
			name:       "equal to average is stable",
			newPrice:   "95",
			freshRef:   decPtr("95"),
			wantStatus: StatusStable,
			wantTier:   TierNone,
		},
		{
			name:       "stored average is the fallback",
			newPrice:   "80",
			storedRef:  decPtr("95"),
			wantStatus: StatusDropped,
			wantTier:   TierDrop,
		},
		{
			name:       "no average on either side is unknown",
			newPrice:   "80",
			wantStatus: StatusUnknown,
			wantTier:   TierNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &TrackedItem{
				CurrentPrice: decPtr("100"),
				ReferenceAvg: tt.storedRef,
				PriceHistory: []PricePoint{{Price: dec("100"), ObservedAt: time.Now().Add(-time.Hour)}},
			}
			res, err := Detect(item, Observation{Price: decPtr(tt.newPrice), ReferenceAvg: tt.freshRef}, time.Now())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if !res.Changed {
				t.Fatal("expected change")
			}
			if res.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", res.Status, tt.wantStatus)
			}
			if res.Tier != tt.wantTier {
				t.Errorf("Tier = %v, want %v", res.Tier, tt.wantTier)
			}
		})
	}
}

func TestDetectUnknownStillMutates(t *testing.T) {
	item := &TrackedItem{
		CurrentPrice: decPtr("100"),
		PriceHistory: []PricePoint{{Price: dec("100"), ObservedAt: time.Now().Add(-time.Hour)}},
	}

	res, err := Detect(item, Observation{Price: decPtr("90")}, time.Now())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !res.Changed {
		t.Fatal("price change with unknown direction must still mutate")
	}
	if res.Item.StatusText != StatusUnknown {
		t.Errorf("StatusText = %q, want %q", res.Item.StatusText, StatusUnknown)
	}
	if res.Tier != TierNone {
		t.Errorf("Tier = %v, want TierNone for unknown direction", res.Tier)
	}
}

func TestDetectHistoryCapAndOrdering(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	item := &TrackedItem{}

	prices := []string{"100", "90", "110", "105", "95", "85", "120"}
	for i, p := range prices {
		res, err := Detect(item, Observation{Price: decPtr(p), ReferenceAvg: decPtr("100")}, base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("Detect(%q) error = %v", p, err)
		}
		next := res.Item
		item = &next
	}

	if len(item.PriceHistory) != HistoryCap {
		t.Fatalf("history length = %d, want cap %d", len(item.PriceHistory), HistoryCap)
	}
	for i := 1; i < len(item.PriceHistory); i++ {
		if item.PriceHistory[i].ObservedAt.After(item.PriceHistory[i-1].ObservedAt) {
			t.Fatal("history not sorted newest first")
		}
	}
	if !item.PriceHistory[0].Price.Equal(dec("120")) {
		t.Errorf("newest history price = %v, want 120", item.PriceHistory[0].Price)
	}
	// Oldest entries (100, 90) must have been evicted.
	for _, p := range item.PriceHistory {
		if p.Price.Equal(dec("100")) || p.Price.Equal(dec("90")) {
			t.Errorf("evicted price %v still present", p.Price)
		}
	}
	// Lowest over the capped window.
	if item.LowestPrice == nil || !item.LowestPrice.Equal(dec("85")) {
		t.Errorf("LowestPrice = %v, want 85", item.LowestPrice)
	}
	if item.CurrentPrice.LessThan(*item.LowestPrice) {
		t.Error("invariant violated: lowest price above current price")
	}
}

func TestDetectFirstObservation(t *testing.T) {
	item := &TrackedItem{}

	res, err := Detect(item, Observation{Price: decPtr("50"), ReferenceAvg: decPtr("60")}, time.Now())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !res.Changed {
		t.Fatal("first observation must count as a change")
	}
	got := res.Item
	if got.PreviousPrice == nil || !got.PreviousPrice.Equal(dec("50")) {
		t.Errorf("PreviousPrice = %v, want the new price on first observation", got.PreviousPrice)
	}
	if got.LowestPrice == nil || !got.LowestPrice.Equal(dec("50")) {
		t.Errorf("LowestPrice = %v, want 50", got.LowestPrice)
	}
}
