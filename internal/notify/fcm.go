package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMDeliverer sends push notifications through Firebase Cloud
// Messaging, one message per device token.
type FCMDeliverer struct {
	client *messaging.Client
}

// NewFCM initializes the Firebase app from a service account file.
func NewFCM(ctx context.Context, credentialsFile string) (*FCMDeliverer, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init messaging client: %w", err)
	}
	return &FCMDeliverer{client: client}, nil
}

func (d *FCMDeliverer) Deliver(ctx context.Context, p Payload) error {
	msg := &messaging.Message{
		Token: p.Token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
	}
	if _, err := d.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
