package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/emberhav/pricewatch/internal/cache"
	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
)

// PriceScanner handles the periodic price scan over every active item.
// A cycle can also be forced through the manual trigger channel; both
// paths share the same skip-if-busy guard so at most one cycle runs at
// a time.
type PriceScanner struct {
	store         ItemStore
	catalog       CatalogSource
	cache         Invalidator
	notifier      Notifier
	logger        logger.Logger
	interval      time.Duration
	workers       int
	stopCh        chan struct{}
	manualTrigger chan struct{}

	busy sync.Mutex
	now  func() time.Time
}

// NewPriceScanner creates a new price scanner.
func NewPriceScanner(
	store ItemStore,
	source CatalogSource,
	invalidator Invalidator,
	notifier Notifier,
	log logger.Logger,
	interval time.Duration,
	workers int,
	manualTrigger chan struct{},
) *PriceScanner {
	return &PriceScanner{
		store:         store,
		catalog:       source,
		cache:         invalidator,
		notifier:      notifier,
		logger:        log,
		interval:      interval,
		workers:       workers,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		now:           time.Now,
	}
}

// Start begins the periodic scan loop. The first cycle runs on the
// first tick, not at startup, so boot stays fast.
func (ps *PriceScanner) Start(ctx context.Context) {
	ticker := time.NewTicker(ps.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ps.Scan(ctx)
			case <-ps.manualTrigger:
				ps.logger.Info("manual price scan triggered")
				ps.Scan(ctx)
			case <-ps.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the scanner.
func (ps *PriceScanner) Stop() {
	close(ps.stopCh)
}

// Scan runs one full scan cycle. If a cycle is already in flight the
// call logs and returns immediately instead of queueing behind it.
// Failing to load the worklist aborts the whole cycle; every per-item
// failure is contained to that item.
func (ps *PriceScanner) Scan(ctx context.Context) {
	if !ps.busy.TryLock() {
		ps.logger.Warn("price scan already running, skipping trigger")
		return
	}
	defer ps.busy.Unlock()

	started := ps.now()
	items, err := ps.store.ActiveItems(ctx)
	if err != nil {
		ps.logger.Error("failed to load items for price scan", logger.Error(err))
		return
	}

	ps.logger.Info("price scan started", logger.Int("items", len(items)))

	runPool(ctx, ps.workers, items, ps.scanItem)

	ps.logger.Info("price scan finished",
		logger.Int("items", len(items)),
		logger.Duration("elapsed", ps.now().Sub(started)))
}

// scanItem runs the full per-item pipeline: fetch, detect, persist,
// invalidate, notify. The three side-effecting steps run strictly in
// that order so a cached read never outlives the row it mirrors.
func (ps *PriceScanner) scanItem(ctx context.Context, item *domain.TrackedItem) {
	rec, err := ps.catalog.Fetch(ctx, item.ExternalID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			ps.logger.Warn("item no longer listed in catalog",
				logger.String("item_id", item.ID),
				logger.String("external_id", item.ExternalID))
		case errors.Is(err, catalog.ErrTransient):
			ps.logger.Warn("catalog unavailable for item, retrying next cycle",
				logger.String("item_id", item.ID),
				logger.Error(err))
		default:
			ps.logger.Error("failed to fetch catalog record",
				logger.String("item_id", item.ID),
				logger.Error(err))
		}
		return
	}

	change, err := domain.Detect(item, rec.Observation(), ps.now())
	if err != nil {
		if errors.Is(err, domain.ErrNoPriceData) {
			ps.logger.Debug("no price data for item, skipping",
				logger.String("item_id", item.ID))
			return
		}
		ps.logger.Error("price change detection failed",
			logger.String("item_id", item.ID),
			logger.Error(err))
		return
	}
	if !change.Changed {
		return
	}

	if err := ps.store.UpdatePrices(ctx, &change.Item); err != nil {
		ps.logger.Error("failed to persist price change",
			logger.String("item_id", item.ID),
			logger.Error(err))
		return
	}

	ps.cache.Invalidate(ctx, cache.ItemScopedKeys(item.ID, item.OwnerID)...)

	ps.logger.Info("price change recorded",
		logger.String("item_id", item.ID),
		logger.String("status", change.Status),
		logger.String("price", change.NewPrice.StringFixed(2)),
		logger.Time("observed_at", change.ObservedAt))

	owner, err := ps.store.OwnerPrefs(ctx, item.OwnerID)
	if err != nil {
		ps.logger.Error("failed to load owner preferences",
			logger.String("item_id", item.ID),
			logger.String("owner_id", item.OwnerID),
			logger.Error(err))
		return
	}

	ps.notifier.MaybeNotify(ctx, &change.Item, owner, change)
}
