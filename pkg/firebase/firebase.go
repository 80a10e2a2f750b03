package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/noah-isme/tutoring-admin-api/pkg/config"
)

// NewDatabase returns a Realtime Database client. Without an explicit
// credentials file the SDK falls back to application default credentials.
func NewDatabase(ctx context.Context, cfg config.FirebaseConfig) (*db.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("firebase database url is not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: cfg.DatabaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase database: %w", err)
	}
	return client, nil
}
