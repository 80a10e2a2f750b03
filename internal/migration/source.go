package migration

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// Source reads a whole keyed collection.
type Source interface {
	Read(ctx context.Context, collection string) (map[string]interface{}, error)
}

// FirebaseSource reads collections from the Realtime Database root.
type FirebaseSource struct {
	client *db.Client
}

// NewFirebaseSource wraps a Realtime Database client.
func NewFirebaseSource(client *db.Client) *FirebaseSource {
	return &FirebaseSource{client: client}
}

// Read fetches every child of collection. A missing collection reads as empty.
func (s *FirebaseSource) Read(ctx context.Context, collection string) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := s.client.NewRef(collection).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read firebase collection %s: %w", collection, err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}
