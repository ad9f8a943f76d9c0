package deps

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
	"github.com/emberhav/pricewatch/internal/tracker"
)

// Tracker is the slice of the tracker service the handlers consume.
type Tracker interface {
	Create(ctx context.Context, in tracker.CreateInput) (*domain.TrackedItem, error)
	List(ctx context.Context, ownerID string) ([]tracker.ItemView, error)
	Get(ctx context.Context, id string) (*tracker.ItemView, error)
	History(ctx context.Context, ownerID string) (*tracker.HistoryView, error)
	SetNote(ctx context.Context, id, note string) error
	SetNotifications(ctx context.Context, id string, enabled bool) error
	MarkPurchased(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Tracker      Tracker
	ScanTrigger  chan struct{} // Channel to trigger a manual price scan
	SweepTrigger chan struct{} // Channel to trigger a manual stale sweep

	DB          *pgxpool.Pool // Postgres pool, probed by readyz
	RedisClient *redis.Client // Redis client, probed by readyz
}
