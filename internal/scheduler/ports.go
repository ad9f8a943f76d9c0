package scheduler

import (
	"context"

	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/notify"
)

// ItemStore is the slice of the persistence layer the schedulers need.
type ItemStore interface {
	ActiveItems(ctx context.Context) ([]*domain.TrackedItem, error)
	UpdatePrices(ctx context.Context, item *domain.TrackedItem) error
	UpdateAlternatives(ctx context.Context, id string, alts []domain.AlternativeRef) error
	SoftDelete(ctx context.Context, id string) error
	OwnerPrefs(ctx context.Context, ownerID string) (*domain.OwnerPrefs, error)
}

// CatalogSource fetches fresh records for tracked items.
type CatalogSource interface {
	Fetch(ctx context.Context, externalID string) (*catalog.Record, error)
}

// Invalidator drops cached entries after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

// Notifier decides whether a change warrants a push and sends it.
type Notifier interface {
	MaybeNotify(ctx context.Context, item *domain.TrackedItem, owner *domain.OwnerPrefs, change domain.ChangeResult) notify.Outcome
}

// AltResolver discovers substitute listings for stale items.
type AltResolver interface {
	Resolve(ctx context.Context, item *domain.TrackedItem, hint string, limit int) []domain.AlternativeRef
}
