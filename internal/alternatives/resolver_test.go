package alternatives

import (
	"context"
	"errors"
	"testing"

	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
)

type fakeStrategy struct {
	name string
	ids  []string
	err  error
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Candidates(context.Context, *domain.TrackedItem, string) ([]string, error) {
	return f.ids, f.err
}

type fakeFetcher struct {
	records map[string]catalog.Record
	err     error
	calls   [][]string
}

func (f *fakeFetcher) FetchBatch(_ context.Context, ids []string) ([]catalog.Record, error) {
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.Record
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func rec(id string) catalog.Record {
	return catalog.Record{ExternalID: id, Title: "Alt " + id, CurrentCents: 4999}
}

func testLogger() logger.Logger { return logger.New("error", false) }

func TestResolveFirstNonEmptyStrategyWins(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]catalog.Record{
		"B000000001": rec("B000000001"),
		"B000000002": rec("B000000002"),
	}}
	r := NewResolverWith(fetcher, []Strategy{
		&fakeStrategy{name: "similar"},
		&fakeStrategy{name: "bestsellers", ids: []string{"B000000001", "B000000002"}},
		&fakeStrategy{name: "term-search", ids: []string{"B000000009"}},
	}, testLogger())

	item := &domain.TrackedItem{ID: "i1", ExternalID: "B0TRACKED00"}
	refs := r.Resolve(context.Background(), item, "mouse", 4)

	if len(refs) != 2 {
		t.Fatalf("Resolve() returned %d refs, want 2", len(refs))
	}
	// Third strategy never consulted.
	if len(fetcher.calls) != 1 {
		t.Errorf("FetchBatch called %d times, want 1", len(fetcher.calls))
	}
}

func TestResolveFallsThroughOnStrategyError(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]catalog.Record{
		"B000000003": rec("B000000003"),
	}}
	r := NewResolverWith(fetcher, []Strategy{
		&fakeStrategy{name: "similar", err: errors.New("source down")},
		&fakeStrategy{name: "term-search", ids: []string{"B000000003"}},
	}, testLogger())

	refs := r.Resolve(context.Background(), &domain.TrackedItem{ExternalID: "B0TRACKED00"}, "mouse", 4)
	if len(refs) != 1 || refs[0].ExternalID != "B000000003" {
		t.Fatalf("Resolve() = %+v, want fallback strategy's single ref", refs)
	}
}

func TestResolveFiltersSelfAndKnownAlternatives(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]catalog.Record{
		"B000000005": rec("B000000005"),
	}}
	r := NewResolverWith(fetcher, []Strategy{
		&fakeStrategy{name: "similar", ids: []string{
			"B0TRACKED00", // the item itself
			"B000000004",  // already an alternative
			"B000000005",
			"B000000005", // duplicate in batch
		}},
	}, testLogger())

	item := &domain.TrackedItem{
		ExternalID:   "B0TRACKED00",
		Alternatives: []domain.AlternativeRef{{ExternalID: "B000000004"}},
	}
	refs := r.Resolve(context.Background(), item, "", 4)

	if len(refs) != 1 {
		t.Fatalf("Resolve() returned %d refs, want 1", len(refs))
	}
	if refs[0].ExternalID != "B000000005" {
		t.Errorf("ref = %q", refs[0].ExternalID)
	}
	if len(fetcher.calls) != 1 || len(fetcher.calls[0]) != 1 {
		t.Errorf("FetchBatch got %v, want only the one new candidate", fetcher.calls)
	}
}

func TestResolveRespectsLimit(t *testing.T) {
	records := map[string]catalog.Record{}
	ids := []string{"B000000001", "B000000002", "B000000003", "B000000004", "B000000005"}
	for _, id := range ids {
		records[id] = rec(id)
	}
	r := NewResolverWith(&fakeFetcher{records: records}, []Strategy{
		&fakeStrategy{name: "similar", ids: ids},
	}, testLogger())

	refs := r.Resolve(context.Background(), &domain.TrackedItem{ExternalID: "B0TRACKED00"}, "", 3)
	if len(refs) != 3 {
		t.Errorf("Resolve() returned %d refs, want limit 3", len(refs))
	}
}

func TestResolveAllStrategiesExhausted(t *testing.T) {
	r := NewResolverWith(&fakeFetcher{}, []Strategy{
		&fakeStrategy{name: "similar"},
		&fakeStrategy{name: "bestsellers", err: errors.New("rate limited")},
		&fakeStrategy{name: "term-search"},
	}, testLogger())

	refs := r.Resolve(context.Background(), &domain.TrackedItem{ExternalID: "B0TRACKED00"}, "", 4)
	if len(refs) != 0 {
		t.Errorf("Resolve() = %+v, want empty result without error", refs)
	}
}

func TestResolvePartialResultBelowLimit(t *testing.T) {
	// A strategy returning fewer results than the limit still succeeds.
	fetcher := &fakeFetcher{records: map[string]catalog.Record{
		"B000000001": rec("B000000001"),
		"B000000002": rec("B000000002"),
	}}
	r := NewResolverWith(fetcher, []Strategy{
		&fakeStrategy{name: "similar"},
		&fakeStrategy{name: "bestsellers"},
		&fakeStrategy{name: "term-search", ids: []string{"B000000001", "B000000002"}},
	}, testLogger())

	refs := r.Resolve(context.Background(), &domain.TrackedItem{ExternalID: "B0TRACKED00"}, "wireless mouse", 4)
	if len(refs) != 2 {
		t.Errorf("Resolve() returned %d refs, want 2 despite limit 4", len(refs))
	}
}

func TestStrategyNames(t *testing.T) {
	if (&SimilarStrategy{}).Name() != "similar" {
		t.Error("SimilarStrategy name mismatch")
	}
	if (&BestsellerStrategy{}).Name() != "category-bestsellers" {
		t.Error("BestsellerStrategy name mismatch")
	}
	if (&TermSearchStrategy{}).Name() != "term-search" {
		t.Error("TermSearchStrategy name mismatch")
	}
}
