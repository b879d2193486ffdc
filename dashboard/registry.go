package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/icodeforyou/weatherboard-go/types"
)

// Registry keeps one Controller per client id. Preferences are loaded
// from the store when a client is first seen.
type Registry struct {
	logger      *slog.Logger
	provider    types.WeatherProvider
	store       Store
	timeout     time.Duration
	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(provider types.WeatherProvider, store Store, timeout time.Duration) *Registry {
	return &Registry{
		logger:      slog.Default().With("module", "dashboard"),
		provider:    provider,
		store:       store,
		timeout:     timeout,
		controllers: make(map[string]*Controller),
	}
}

func (r *Registry) Get(ctx context.Context, clientID string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[clientID]; ok {
		return c, nil
	}

	stored, err := r.store.GetPreferences(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}

	prefs := types.PreferencesFromMap(stored)
	r.seed(ctx, clientID, stored, prefs)

	c := NewController(clientID, r.provider, r.store, prefs, r.timeout)
	r.controllers[clientID] = c
	r.logger.Debug("new dashboard session", slog.String("client", clientID), slog.Int("sessions", len(r.controllers)))
	return c, nil
}

func (r *Registry) ProviderName() string {
	return r.provider.Name()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Prune drops controllers not used for maxIdle. Their preferences are
// already in the store.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, c := range r.controllers {
		if time.Since(c.idleSince()) > maxIdle {
			delete(r.controllers, id)
			pruned++
		}
	}
	if pruned > 0 {
		r.logger.Info(fmt.Sprintf("pruned %d idle sessions", pruned))
	}
	return pruned
}

// seed writes the effective unit preferences back for keys that are
// missing from the store or hold a value that no longer parses.
func (r *Registry) seed(ctx context.Context, clientID string, stored map[string]string, prefs types.Preferences) {
	for key, value := range prefs.ToMap() {
		if key == types.PrefLastCity || stored[key] == value {
			continue
		}
		if err := r.store.SavePreference(ctx, clientID, key, value); err != nil {
			r.logger.Warn("seeding preference failed", slog.String("client", clientID), slog.String("key", key), slog.Any("error", err))
		}
	}
}
