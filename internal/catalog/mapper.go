package catalog

import "strings"

// mapProduct converts a wire payload into a Record, normalizing the
// positional stats arrays into named fields.
func mapProduct(p productPayload) Record {
	rec := Record{
		ExternalID:   p.ASIN,
		Title:        p.Title,
		Brand:        p.Brand,
		Description:  p.Description,
		Features:     p.Features,
		CurrentCents: sentinelCents,
		AvgCents:     sentinelCents,
		Avg30Cents:   sentinelCents,
		Avg90Cents:   sentinelCents,
		Avg180Cents:  sentinelCents,
		Avg365Cents:  sentinelCents,
		RatingTenths: sentinelCents,
		ReviewCount:  sentinelCents,
		SimilarIDs:   p.SimilarProducts,
	}

	if p.ImagesCSV != "" {
		rec.ImageIDs = strings.Split(p.ImagesCSV, ",")
	}

	for _, node := range p.CategoryTree {
		rec.Categories = append(rec.Categories, Category{ID: node.CatID, Name: node.Name})
	}

	if s := p.Stats; s != nil {
		rec.CurrentCents = statSlot(s.Current)
		rec.AvgCents = statSlot(s.Avg)
		rec.Avg30Cents = statSlot(s.Avg30)
		rec.Avg90Cents = statSlot(s.Avg90)
		rec.Avg180Cents = statSlot(s.Avg180)
		rec.Avg365Cents = statSlot(s.Avg365)
		if s.Rating != nil {
			rec.RatingTenths = *s.Rating
		}
		if s.ReviewCount != nil {
			rec.ReviewCount = *s.ReviewCount
		}
	}

	// The stats object is the reliable source for rating data; the
	// paired time series is the fallback for older payloads.
	if rec.RatingTenths == sentinelCents {
		rec.RatingTenths = lastSeriesValue(p.CSV, 16)
	}
	if rec.ReviewCount == sentinelCents {
		rec.ReviewCount = lastSeriesValue(p.CSV, 17)
	}

	return rec
}

// statSlot reads the primary listing slot of an indexed stats array.
func statSlot(arr []int64) int64 {
	if len(arr) == 0 {
		return sentinelCents
	}
	return arr[0]
}

// lastSeriesValue reads the most recent value of a paired
// [time, value, ...] series, -1 when the series is missing or short.
func lastSeriesValue(csv [][]int64, index int) int64 {
	if index >= len(csv) {
		return sentinelCents
	}
	series := csv[index]
	if len(series) < 2 {
		return sentinelCents
	}
	return series[len(series)-1]
}
