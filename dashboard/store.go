package dashboard

import (
	"context"
	"time"
)

// Store persists preferences per client and the search history.
type Store interface {
	GetPreferences(ctx context.Context, clientID string) (map[string]string, error)
	SavePreference(ctx context.Context, clientID string, key string, value string) error
	RecordSearch(ctx context.Context, label string, when time.Time) error
}
