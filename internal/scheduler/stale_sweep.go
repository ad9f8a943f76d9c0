package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/emberhav/pricewatch/internal/cache"
	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
)

// StaleSweeper periodically walks active items looking for prices that
// have stopped moving. Items flagged for auto-removal are soft-deleted
// once past the removal window; the rest get substitute listings
// resolved and merged into their alternative set.
type StaleSweeper struct {
	store           ItemStore
	resolver        AltResolver
	cache           Invalidator
	logger          logger.Logger
	interval        time.Duration
	staleWindow     time.Duration
	autoRemoveAfter time.Duration
	altLimit        int
	stopCh          chan struct{}
	manualTrigger   chan struct{}

	busy sync.Mutex
	now  func() time.Time
}

// NewStaleSweeper creates a new stale sweeper.
func NewStaleSweeper(
	store ItemStore,
	resolver AltResolver,
	invalidator Invalidator,
	log logger.Logger,
	interval, staleWindow, autoRemoveAfter time.Duration,
	altLimit int,
	manualTrigger chan struct{},
) *StaleSweeper {
	return &StaleSweeper{
		store:           store,
		resolver:        resolver,
		cache:           invalidator,
		logger:          log,
		interval:        interval,
		staleWindow:     staleWindow,
		autoRemoveAfter: autoRemoveAfter,
		altLimit:        altLimit,
		stopCh:          make(chan struct{}),
		manualTrigger:   manualTrigger,
		now:             time.Now,
	}
}

// Start begins the periodic sweep loop.
func (sw *StaleSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sw.Sweep(ctx)
			case <-sw.manualTrigger:
				sw.logger.Info("manual stale sweep triggered")
				sw.Sweep(ctx)
			case <-sw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper.
func (sw *StaleSweeper) Stop() {
	close(sw.stopCh)
}

// Sweep runs one sweep cycle, skipping entirely if one is in flight.
func (sw *StaleSweeper) Sweep(ctx context.Context) {
	if !sw.busy.TryLock() {
		sw.logger.Warn("stale sweep already running, skipping trigger")
		return
	}
	defer sw.busy.Unlock()

	items, err := sw.store.ActiveItems(ctx)
	if err != nil {
		sw.logger.Error("failed to load items for stale sweep", logger.Error(err))
		return
	}

	sw.logger.Info("stale sweep started", logger.Int("items", len(items)))

	removed, enriched := 0, 0
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		if item.Purchased {
			continue
		}
		switch sw.sweepItem(ctx, item) {
		case sweepRemoved:
			removed++
		case sweepEnriched:
			enriched++
		}
	}

	sw.logger.Info("stale sweep finished",
		logger.Int("removed", removed),
		logger.Int("enriched", enriched))
}

type sweepAction int

const (
	sweepNone sweepAction = iota
	sweepRemoved
	sweepEnriched
)

func (sw *StaleSweeper) sweepItem(ctx context.Context, item *domain.TrackedItem) sweepAction {
	now := sw.now()

	if item.AutoRemove && domain.PriceStaleFor(item.PriceHistory, sw.autoRemoveAfter, now) {
		if err := sw.store.SoftDelete(ctx, item.ID); err != nil {
			sw.logger.Error("failed to auto-remove stale item",
				logger.String("item_id", item.ID),
				logger.Error(err))
			return sweepNone
		}
		sw.cache.Invalidate(ctx, cache.ItemScopedKeys(item.ID, item.OwnerID)...)
		sw.logger.Info("auto-removed item with no recent price movement",
			logger.String("item_id", item.ID))
		return sweepRemoved
	}

	if !domain.PriceStaleFor(item.PriceHistory, sw.staleWindow, now) {
		return sweepNone
	}

	found := sw.resolver.Resolve(ctx, item, item.Brand, sw.altLimit)
	if len(found) == 0 {
		return sweepNone
	}

	merged := domain.MergeAlternatives(item.Alternatives, found)
	if len(merged) == len(item.Alternatives) {
		// Everything resolved was already known.
		return sweepNone
	}

	if err := sw.store.UpdateAlternatives(ctx, item.ID, merged); err != nil {
		sw.logger.Error("failed to persist alternatives",
			logger.String("item_id", item.ID),
			logger.Error(err))
		return sweepNone
	}
	sw.cache.Invalidate(ctx, cache.ItemScopedKeys(item.ID, item.OwnerID)...)

	sw.logger.Info("alternatives attached to stale item",
		logger.String("item_id", item.ID),
		logger.Int("total", len(merged)))
	return sweepEnriched
}
