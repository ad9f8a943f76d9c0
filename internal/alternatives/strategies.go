package alternatives

import (
	"context"
	"fmt"

	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/domain"
)

// SimilarStrategy returns the products the catalog itself lists as
// similar to the tracked item.
type SimilarStrategy struct {
	Source interface {
		Fetch(ctx context.Context, externalID string) (*catalog.Record, error)
	}
}

func (s *SimilarStrategy) Name() string { return "similar" }

func (s *SimilarStrategy) Candidates(ctx context.Context, item *domain.TrackedItem, _ string) ([]string, error) {
	rec, err := s.Source.Fetch(ctx, item.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracked record: %w", err)
	}
	return rec.SimilarIDs, nil
}

// BestsellerStrategy walks the item's category trail from the most
// specific category to the broadest and returns the bestsellers of the
// first category the catalog can resolve.
type BestsellerStrategy struct {
	Source interface {
		Fetch(ctx context.Context, externalID string) (*catalog.Record, error)
		SearchCategories(ctx context.Context, term string) ([]catalog.CategoryMatch, error)
	}
}

func (s *BestsellerStrategy) Name() string { return "category-bestsellers" }

func (s *BestsellerStrategy) Candidates(ctx context.Context, item *domain.TrackedItem, _ string) ([]string, error) {
	rec, err := s.Source.Fetch(ctx, item.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracked record: %w", err)
	}

	// Most specific category last in the trail; walk it backwards.
	for i := len(rec.Categories) - 1; i >= 0; i-- {
		matches, err := s.Source.SearchCategories(ctx, rec.Categories[i].Name)
		if err != nil {
			return nil, fmt.Errorf("failed to search category %q: %w", rec.Categories[i].Name, err)
		}
		for _, match := range matches {
			if len(match.TopSellers) > 0 {
				return match.TopSellers, nil
			}
		}
	}
	return nil, nil
}

// TermSearchStrategy runs a free-text search on the supplied hint,
// typically the item's brand or a user-provided term.
type TermSearchStrategy struct {
	Source interface {
		SearchProducts(ctx context.Context, term string) ([]string, error)
	}
}

func (s *TermSearchStrategy) Name() string { return "term-search" }

func (s *TermSearchStrategy) Candidates(ctx context.Context, _ *domain.TrackedItem, hint string) ([]string, error) {
	if hint == "" {
		return nil, nil
	}
	return s.Source.SearchProducts(ctx, hint)
}
