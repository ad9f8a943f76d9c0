package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emberhav/pricewatch/internal/domain"
)

// ItemView is the serialized shape of a tracked item as returned by
// list and get operations. It is what the cache stores, so changing a
// field here changes the cached payloads too.
type ItemView struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Brand            string    `json:"brand,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	Note             string    `json:"note,omitempty"`
	SourceURL        string    `json:"source_url"`
	CurrentPrice     string    `json:"current_price,omitempty"`
	PreviousPrice    string    `json:"previous_price,omitempty"`
	LowestPrice      string    `json:"lowest_price,omitempty"`
	PercentageChange string    `json:"percentage_change"`
	Status           string    `json:"status"`
	Notifications    bool      `json:"notifications_enabled"`
	AutoRemove       bool      `json:"auto_remove"`
	Purchased        bool      `json:"purchased"`
	SavedAmount      string    `json:"saved_amount,omitempty"`

	PriceHistory []domain.PricePoint     `json:"price_history,omitempty"`
	Alternatives []domain.AlternativeRef `json:"alternatives,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryView aggregates an owner's removed items with the total amount
// saved across purchases.
type HistoryView struct {
	Items      []ItemView `json:"items"`
	TotalSaved string     `json:"total_saved"`
}

// itemView projects a tracked item into its serialized shape.
func itemView(item *domain.TrackedItem) ItemView {
	v := ItemView{
		ID:               item.ID,
		Title:            item.Title,
		Brand:            item.Brand,
		ImageURL:         item.ImageURL,
		Note:             item.Note,
		SourceURL:        item.SourceURL,
		PercentageChange: percentageChange(item.CurrentPrice, item.ReferenceAvg),
		Status:           item.StatusText,
		Notifications:    item.NotificationsEnabled,
		AutoRemove:       item.AutoRemove,
		Purchased:        item.Purchased,
		PriceHistory:     item.PriceHistory,
		Alternatives:     item.Alternatives,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	if item.CurrentPrice != nil {
		v.CurrentPrice = item.CurrentPrice.StringFixed(2)
	}
	if item.PreviousPrice != nil {
		v.PreviousPrice = item.PreviousPrice.StringFixed(2)
	}
	if item.LowestPrice != nil {
		v.LowestPrice = item.LowestPrice.StringFixed(2)
	}
	if item.Purchased {
		v.SavedAmount = item.SavedAmount.StringFixed(2)
	}
	return v
}

// percentageChange is the current price's deviation from the reference
// average in percent, "0.00" whenever either side is unusable.
func percentageChange(current, reference *decimal.Decimal) string {
	if current == nil || reference == nil || reference.IsZero() {
		return "0.00"
	}
	return current.Sub(*reference).
		Div(*reference).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2)
}
