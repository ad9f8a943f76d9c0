package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emberhav/pricewatch/internal/cache"
	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
	"github.com/emberhav/pricewatch/internal/store"
)

var (
	// ErrInvalidURL means no catalog identifier could be derived from
	// the submitted listing URL.
	ErrInvalidURL = errors.New("tracker: invalid listing url")

	// ErrDuplicate means the owner already tracks this listing.
	ErrDuplicate = errors.New("tracker: item already tracked")

	// ErrLimitReached means the owner is at their tracked-item cap.
	ErrLimitReached = errors.New("tracker: item limit reached")

	// ErrNotFound means the item does not exist or is deleted.
	ErrNotFound = errors.New("tracker: item not found")
)

// Store is the slice of the persistence layer the tracker needs.
type Store interface {
	CreateItem(ctx context.Context, item *domain.TrackedItem) error
	ItemByID(ctx context.Context, id string) (*domain.TrackedItem, error)
	ActiveItemsByOwner(ctx context.Context, ownerID string) ([]*domain.TrackedItem, error)
	DeletedItemsByOwner(ctx context.Context, ownerID string) ([]*domain.TrackedItem, error)
	CountActiveByOwner(ctx context.Context, ownerID string) (int, error)
	ActiveExists(ctx context.Context, ownerID, sourceURL string) (bool, error)
	UpdateNote(ctx context.Context, id, note string) error
	SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error
	MarkPurchased(ctx context.Context, id string, saved decimal.Decimal) error
	SoftDelete(ctx context.Context, id string) error
}

// ViewCache caches serialized views and drops them on mutation.
type ViewCache interface {
	GetJSON(ctx context.Context, key string, out any) bool
	SetJSON(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, keys ...string)
}

// CatalogSource fetches the record that seeds a newly tracked item.
type CatalogSource interface {
	Fetch(ctx context.Context, externalID string) (*catalog.Record, error)
}

// Service implements the owner-facing tracked-item operations. Every
// mutation invalidates the item's cache keys before returning so reads
// never serve a view older than the row behind it.
type Service struct {
	store       Store
	cache       ViewCache
	catalog     CatalogSource
	logger      logger.Logger
	maxPerOwner int

	expandURL func(ctx context.Context, rawURL string) (string, error)
	newID     func() string
	now       func() time.Time
}

// New creates the tracker service.
func New(st Store, vc ViewCache, source CatalogSource, maxPerOwner int, log logger.Logger) *Service {
	return &Service{
		store:       st,
		cache:       vc,
		catalog:     source,
		logger:      log,
		maxPerOwner: maxPerOwner,
		expandURL:   catalog.ExpandShortURL,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// CreateInput carries the owner-supplied fields for a new item.
type CreateInput struct {
	OwnerID    string
	URL        string
	Note       string
	AutoRemove bool
}

// Create registers a new tracked item. Shortened listing URLs are
// expanded first; the catalog record seeds the descriptive snapshot and
// the first price observation. An unreachable catalog still creates the
// item, it just starts without price data.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.TrackedItem, error) {
	sourceURL, err := s.expandURL(ctx, in.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	externalID, err := catalog.ExtractExternalID(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	exists, err := s.store.ActiveExists(ctx, in.OwnerID, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	count, err := s.store.CountActiveByOwner(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracked items: %w", err)
	}
	if count >= s.maxPerOwner {
		return nil, ErrLimitReached
	}

	now := s.now()
	item := &domain.TrackedItem{
		ID:                   s.newID(),
		OwnerID:              in.OwnerID,
		SourceURL:            sourceURL,
		ExternalID:           externalID,
		Note:                 in.Note,
		StatusText:           domain.StatusUnknown,
		NotificationsEnabled: true,
		AutoRemove:           in.AutoRemove,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	s.seedFromCatalog(ctx, item, now)

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.cache.Invalidate(ctx, cache.ItemScopedKeys(item.ID, in.OwnerID)...)

	s.logger.Info("item tracked",
		logger.String("item_id", item.ID),
		logger.String("external_id", externalID),
		logger.String("owner_id", in.OwnerID))
	return item, nil
}

// seedFromCatalog fills the descriptive snapshot and first observation.
func (s *Service) seedFromCatalog(ctx context.Context, item *domain.TrackedItem, now time.Time) {
	rec, err := s.catalog.Fetch(ctx, item.ExternalID)
	if err != nil {
		s.logger.Warn("catalog unavailable at creation, item starts without price data",
			logger.String("external_id", item.ExternalID),
			logger.Error(err))
		return
	}

	item.Title = rec.Title
	item.Brand = rec.Brand
	item.ImageURL = rec.ImageURL()

	change, err := domain.Detect(item, rec.Observation(), now)
	if err != nil {
		return
	}
	*item = change.Item
}

// List returns the owner's active items, served from cache when the
// entry is still live.
func (s *Service) List(ctx context.Context, ownerID string) ([]ItemView, error) {
	key := cache.OwnerItemsKey(ownerID)

	var views []ItemView
	if s.cache.GetJSON(ctx, key, &views) {
		return views, nil
	}

	items, err := s.store.ActiveItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	views = make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView(item))
	}

	s.cache.SetJSON(ctx, key, views)
	return views, nil
}

// Get returns a single item by id.
func (s *Service) Get(ctx context.Context, id string) (*ItemView, error) {
	key := cache.ItemKey(id)

	var view ItemView
	if s.cache.GetJSON(ctx, key, &view) {
		return &view, nil
	}

	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	view = itemView(item)
	s.cache.SetJSON(ctx, key, view)
	return &view, nil
}

// History returns the owner's removed items together with the total
// amount saved across purchased ones.
func (s *Service) History(ctx context.Context, ownerID string) (*HistoryView, error) {
	key := cache.OwnerHistoryKey(ownerID)

	var view HistoryView
	if s.cache.GetJSON(ctx, key, &view) {
		return &view, nil
	}

	items, err := s.store.DeletedItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item history: %w", err)
	}

	total := decimal.Zero
	view.Items = make([]ItemView, 0, len(items))
	for _, item := range items {
		if item.Purchased {
			total = total.Add(item.SavedAmount)
		}
		view.Items = append(view.Items, itemView(item))
	}
	view.TotalSaved = total.StringFixed(2)

	s.cache.SetJSON(ctx, key, view)
	return &view, nil
}

// SetNote replaces the owner's note on an item.
func (s *Service) SetNote(ctx context.Context, id, note string) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateNote(ctx, id, note); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	s.cache.Invalidate(ctx, cache.ItemScopedKeys(id, item.OwnerID)...)
	return nil
}

// SetNotifications flips per-item push delivery.
func (s *Service) SetNotifications(ctx context.Context, id string, enabled bool) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SetNotificationsEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("failed to update notifications flag: %w", err)
	}
	s.cache.Invalidate(ctx, cache.ItemScopedKeys(id, item.OwnerID)...)

	s.logger.Info("notifications preference updated",
		logger.String("item_id", id),
		logger.Bool("enabled", enabled))
	return nil
}

// MarkPurchased records that the owner bought the item. The saved
// amount is the reference average minus the purchase price, floored at
// zero, so buying above average never counts as negative savings.
func (s *Service) MarkPurchased(ctx context.Context, id string) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}

	saved := decimal.Zero
	if item.ReferenceAvg != nil && item.CurrentPrice != nil {
		if diff := item.ReferenceAvg.Sub(*item.CurrentPrice); diff.IsPositive() {
			saved = diff
		}
	}

	if err := s.store.MarkPurchased(ctx, id, saved); err != nil {
		return fmt.Errorf("failed to mark item purchased: %w", err)
	}
	s.cache.Invalidate(ctx, cache.ItemScopedKeys(id, item.OwnerID)...)

	s.logger.Info("item purchased",
		logger.String("item_id", id),
		logger.String("saved", saved.StringFixed(2)))
	return nil
}

// Delete soft-deletes the item, moving it into the owner's history.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.cache.Invalidate(ctx, cache.ItemScopedKeys(id, item.OwnerID)...)
	return nil
}

func (s *Service) loadItem(ctx context.Context, id string) (*domain.TrackedItem, error) {
	item, err := s.store.ItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	return item, nil
}
