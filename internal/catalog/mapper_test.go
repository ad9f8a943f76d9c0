package catalog

import (
	"encoding/json"
	"testing"
)

const sampleProductJSON = `{
	"products": [
		{
			"asin": "B08N5WRWNW",
			"title": "Wireless Vertical Mouse",
			"brand": "Acme",
			"imagesCSV": "img-front.jpg,img-side.jpg",
			"stats": {
				"current": [8999, -1],
				"avg": [9499],
				"avg30": [9299],
				"avg90": [9599],
				"rating": 43,
				"reviewCount": 1287
			},
			"categoryTree": [
				{"catId": 340843031, "name": "Computers & Accessories"},
				{"catId": 429892031, "name": "Mice"}
			],
			"similarProducts": ["B07FKMHMZ4", "B01MU9YB3E"]
		}
	]
}`

func TestMapProduct(t *testing.T) {
	var resp productResponse
	if err := json.Unmarshal([]byte(sampleProductJSON), &resp); err != nil {
		t.Fatalf("failed to unmarshal fixture: %v", err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("fixture products = %d, want 1", len(resp.Products))
	}

	rec := mapProduct(resp.Products[0])

	if rec.ExternalID != "B08N5WRWNW" {
		t.Errorf("ExternalID = %q", rec.ExternalID)
	}
	if p := rec.CurrentPrice(); p == nil || p.String() != "89.99" {
		t.Errorf("CurrentPrice = %v, want 89.99", p)
	}
	if avg := rec.ReferenceAvg(); avg == nil || avg.String() != "94.99" {
		t.Errorf("ReferenceAvg = %v, want 94.99", avg)
	}
	if rec.Rating() != 4.3 {
		t.Errorf("Rating = %v, want 4.3", rec.Rating())
	}
	if rec.Reviews() != 1287 {
		t.Errorf("Reviews = %d, want 1287", rec.Reviews())
	}
	if rec.ImageURL() != imageBaseURL+"img-front.jpg" {
		t.Errorf("ImageURL = %q", rec.ImageURL())
	}
	if len(rec.Categories) != 2 || rec.Categories[1].Name != "Mice" {
		t.Errorf("Categories = %+v, want trail ending in Mice", rec.Categories)
	}
	if len(rec.SimilarIDs) != 2 {
		t.Errorf("SimilarIDs = %v", rec.SimilarIDs)
	}
}

func TestMapProductUnavailablePrice(t *testing.T) {
	payload := productPayload{
		ASIN:  "B000000000",
		Stats: &statsPayload{Current: []int64{-1}},
	}

	rec := mapProduct(payload)

	if p := rec.CurrentPrice(); p != nil {
		t.Errorf("CurrentPrice = %v, want nil for -1 sentinel", p)
	}
	if obs := rec.Observation(); obs.Price != nil {
		t.Error("Observation carried a price for an unavailable listing")
	}
}

func TestMapProductNoStats(t *testing.T) {
	rec := mapProduct(productPayload{ASIN: "B000000000"})

	if rec.CurrentPrice() != nil {
		t.Error("CurrentPrice should be nil without stats")
	}
	if rec.ReferenceAvg() != nil {
		t.Error("ReferenceAvg should be nil without stats")
	}
	if rec.Rating() != 0 {
		t.Errorf("Rating = %v, want 0", rec.Rating())
	}
}

func TestMapProductRatingFromSeries(t *testing.T) {
	csv := make([][]int64, 18)
	csv[16] = []int64{5000000, 40, 5001000, 45}
	csv[17] = []int64{5000000, 100, 5001000, 230}

	rec := mapProduct(productPayload{ASIN: "B000000000", CSV: csv})

	if rec.Rating() != 4.5 {
		t.Errorf("Rating = %v, want 4.5 from series fallback", rec.Rating())
	}
	if rec.Reviews() != 230 {
		t.Errorf("Reviews = %d, want 230 from series fallback", rec.Reviews())
	}
}
