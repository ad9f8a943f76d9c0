package alternatives

import (
	"context"

	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
)

// Strategy produces candidate external ids for an item. Strategies are
// tried in order; the first one yielding usable candidates wins.
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, item *domain.TrackedItem, hint string) ([]string, error)
}

// recordFetcher resolves candidate ids into full catalog records.
type recordFetcher interface {
	FetchBatch(ctx context.Context, externalIDs []string) ([]catalog.Record, error)
}

// Resolver discovers substitute listings for items whose price has
// gone stale. "No alternative found" is an expected terminal outcome,
// never an error: a failing strategy logs and falls through to the
// next one.
type Resolver struct {
	fetcher    recordFetcher
	strategies []Strategy
	logger     logger.Logger
}

// NewResolver builds the default strategy chain: catalog-listed
// similar items, then category bestsellers, then a free-text search on
// the supplied hint.
func NewResolver(client *catalog.Client, log logger.Logger) *Resolver {
	return &Resolver{
		fetcher: client,
		strategies: []Strategy{
			&SimilarStrategy{Source: client},
			&BestsellerStrategy{Source: client},
			&TermSearchStrategy{Source: client},
		},
		logger: log,
	}
}

// NewResolverWith builds a resolver over an explicit strategy chain.
func NewResolverWith(fetcher recordFetcher, strategies []Strategy, log logger.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, strategies: strategies, logger: log}
}

// Resolve runs the strategy chain for one item and returns at most
// limit alternatives, none of which duplicate the item itself or an
// alternative it already carries.
func (r *Resolver) Resolve(ctx context.Context, item *domain.TrackedItem, hint string, limit int) []domain.AlternativeRef {
	for _, strategy := range r.strategies {
		ids, err := strategy.Candidates(ctx, item, hint)
		if err != nil {
			r.logger.Warn("alternative strategy failed, falling through",
				logger.String("strategy", strategy.Name()),
				logger.String("item_id", item.ID),
				logger.Error(err))
			continue
		}

		ids = r.filterCandidates(item, ids)
		if len(ids) == 0 {
			continue
		}

		refs := r.resolveRecords(ctx, strategy.Name(), ids, limit)
		if len(refs) > 0 {
			r.logger.Info("alternatives resolved",
				logger.String("strategy", strategy.Name()),
				logger.String("item_id", item.ID),
				logger.Int("count", len(refs)))
			return refs
		}
	}
	return nil
}

// filterCandidates drops the item itself, already-known alternatives
// and duplicates within the batch.
func (r *Resolver) filterCandidates(item *domain.TrackedItem, ids []string) []string {
	seen := make(map[string]bool, len(ids))
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == item.ExternalID || seen[id] || item.HasAlternative(id) {
			continue
		}
		seen[id] = true
		filtered = append(filtered, id)
	}
	return filtered
}

func (r *Resolver) resolveRecords(ctx context.Context, strategy string, ids []string, limit int) []domain.AlternativeRef {
	records, err := r.fetcher.FetchBatch(ctx, ids)
	if err != nil {
		r.logger.Warn("failed to resolve candidate records",
			logger.String("strategy", strategy),
			logger.Error(err))
		return nil
	}

	refs := make([]domain.AlternativeRef, 0, limit)
	for _, rec := range records {
		if limit > 0 && len(refs) == limit {
			break
		}
		refs = append(refs, rec.AlternativeRef())
	}
	return refs
}
