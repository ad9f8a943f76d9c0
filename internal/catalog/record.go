package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/emberhav/pricewatch/internal/domain"
)

// sentinelCents marks a price the catalog reports as unavailable.
const sentinelCents = -1

// Category is one node of a record's category trail.
type Category struct {
	ID   int64
	Name string
}

// Record is the parsed view of one catalog product. All price fields
// are in cents with -1 meaning unavailable; accessors convert to
// decimal units so nothing downstream touches raw cents.
type Record struct {
	ExternalID  string
	Title       string
	Brand       string
	Description string
	Features    []string
	ImageIDs    []string

	CurrentCents int64
	AvgCents     int64 // rolling average over the stats window
	Avg30Cents   int64
	Avg90Cents   int64
	Avg180Cents  int64
	Avg365Cents  int64

	RatingTenths int64 // 0-50 scale, -1 when absent
	ReviewCount  int64 // -1 when absent

	// Categories is the category trail, most specific last.
	Categories []Category

	// SimilarIDs are the identifiers the catalog lists as similar
	// products, when it provides any.
	SimilarIDs []string
}

// imageBaseURL prefixes image ids into full URLs, mirroring the
// catalog's CDN layout.
const imageBaseURL = "https://m.media-amazon.com/images/I/"

// CurrentPrice returns the current listing price in units, nil when
// the catalog reports the item as unavailable.
func (r *Record) CurrentPrice() *decimal.Decimal {
	return centsToPrice(r.CurrentCents)
}

// ReferenceAvg returns the rolling average over the stats window, nil
// when absent. It is the comparison baseline for change classification.
func (r *Record) ReferenceAvg() *decimal.Decimal {
	return centsToPrice(r.AvgCents)
}

// Observation extracts the price view consumed by the change detector.
func (r *Record) Observation() domain.Observation {
	return domain.Observation{
		Price:        r.CurrentPrice(),
		ReferenceAvg: r.ReferenceAvg(),
	}
}

// Rating returns the average rating on a 0-5 scale, 0 when absent.
func (r *Record) Rating() float64 {
	if r.RatingTenths < 0 {
		return 0
	}
	return float64(r.RatingTenths) / 10
}

// Reviews returns the review count, 0 when absent.
func (r *Record) Reviews() int {
	if r.ReviewCount < 0 {
		return 0
	}
	return int(r.ReviewCount)
}

// ImageURL returns the full URL of the primary image, empty when the
// record carries none.
func (r *Record) ImageURL() string {
	if len(r.ImageIDs) == 0 {
		return ""
	}
	return imageBaseURL + r.ImageIDs[0]
}

// AlternativeRef maps the record to a substitute-listing reference.
func (r *Record) AlternativeRef() domain.AlternativeRef {
	ref := domain.AlternativeRef{
		ExternalID:  r.ExternalID,
		Title:       r.Title,
		Rating:      r.Rating(),
		ReviewCount: r.Reviews(),
		ImageURL:    r.ImageURL(),
	}
	if p := r.CurrentPrice(); p != nil {
		ref.Price = *p
	}
	return ref
}

func centsToPrice(cents int64) *decimal.Decimal {
	if cents == sentinelCents || cents < 0 {
		return nil
	}
	d := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
	return &d
}
