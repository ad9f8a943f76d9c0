package notify

import (
	"context"
	"time"

	"github.com/emberhav/pricewatch/internal/domain"
	"github.com/emberhav/pricewatch/internal/logger"
)

// Outcome reports what the dispatcher did with a change.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
)

// Dispatcher builds notification payloads and hands them to the
// delivery collaborator. Best effort, fire and forget: a failed
// delivery is logged and the cycle moves on.
type Dispatcher struct {
	deliverer Deliverer
	templates Templates
	logger    logger.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(deliverer Deliverer, templates Templates, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		deliverer: deliverer,
		templates: templates,
		logger:    log,
	}
}

// MaybeNotify sends a push for a detected change when every gating
// condition holds: owner opted in, one-time consent given, a device
// token present, the item's notifications enabled, and the change real.
// Anything else is a silent no-op. Directionless changes (unknown or
// stable) carry no template tier and are skipped too.
func (d *Dispatcher) MaybeNotify(ctx context.Context, item *domain.TrackedItem, owner *domain.OwnerPrefs, change domain.ChangeResult) Outcome {
	if !change.Changed {
		return OutcomeSkipped
	}
	if owner == nil || !owner.PushOptedIn || !owner.ConsentGiven || owner.PushToken == "" {
		return OutcomeSkipped
	}
	if !item.NotificationsEnabled {
		return OutcomeSkipped
	}

	var tpl Template
	switch change.Tier {
	case domain.TierDrop:
		tpl = d.templates.PriceDrop
	case domain.TierIncrease:
		tpl = d.templates.PriceIncrease
	default:
		return OutcomeSkipped
	}

	title, body := tpl.Render(item.Title, change.NewPrice.StringFixed(2))
	payload := Payload{
		Token: owner.PushToken,
		Title: title,
		Body:  body,
		Data:  payloadData(item, change),
	}

	if err := d.deliverer.Deliver(ctx, payload); err != nil {
		d.logger.Warn("notification delivery failed",
			logger.String("item_id", item.ID),
			logger.String("owner_id", item.OwnerID),
			logger.Error(err))
		return OutcomeFailed
	}

	d.logger.Info("notification sent",
		logger.String("item_id", item.ID),
		logger.String("status", change.Status))
	return OutcomeSent
}

func payloadData(item *domain.TrackedItem, change domain.ChangeResult) map[string]string {
	data := map[string]string{
		"itemId":     item.ID,
		"observedAt": change.ObservedAt.UTC().Format(time.RFC3339),
	}
	if change.OldPrice != nil {
		data["previousPrice"] = change.OldPrice.StringFixed(2)
	}
	if change.Item.LowestPrice != nil {
		data["lowestPrice"] = change.Item.LowestPrice.StringFixed(2)
	}
	return data
}
