package notify

import (
	"context"
	"errors"

	"github.com/emberhav/pricewatch/internal/logger"
)

// ErrDelivery wraps push transport failures. Non-fatal to the caller:
// the mutation that triggered the notification is already committed,
// and the next scheduled cycle is the retry boundary.
var ErrDelivery = errors.New("notify: delivery failed")

// Payload is one push message bound for a single device token.
type Payload struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Deliverer is the push transport collaborator.
type Deliverer interface {
	Deliver(ctx context.Context, p Payload) error
}

// LogDeliverer writes notifications to the log instead of a push
// service. Used when no push credentials are configured.
type LogDeliverer struct {
	Logger logger.Logger
}

func (d *LogDeliverer) Deliver(_ context.Context, p Payload) error {
	d.Logger.Info("notification (log delivery)",
		logger.String("title", p.Title),
		logger.String("body", p.Body),
		logger.String("item_id", p.Data["itemId"]))
	return nil
}
