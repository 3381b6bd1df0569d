package utils

import (
	"context"
	"fmt"

	"visapoint/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// NewMessagingClient returns the FCM client used for team pushes, or nil
// without error when FIREBASE_CREDENTIALS is empty.
func NewMessagingClient(ctx context.Context, cfg config.Config) (*messaging.Client, error) {
	if cfg.FirebaseCredentials == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentials))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return client, nil
}
