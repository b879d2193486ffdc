// Package dashboard owns the per-session application state: the unit
// preferences, the last search and its results, and the selected day.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/icodeforyou/weatherboard-go/forecast"
	"github.com/icodeforyou/weatherboard-go/hours"
	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 10 * time.Second

var (
	ErrEmptyQuery        = errors.New("empty city name")
	ErrDayOutOfRange     = errors.New("day out of range")
	ErrUnknownPreference = errors.New("unknown preference")
)

// State is a snapshot of everything the dashboard renders. Raw
// measurements are kept in °C and m/s; display strings are derived.
type State struct {
	Prefs    types.Preferences
	Query    string
	Prompt   bool // blank search submitted
	Err      error
	Current  maybe.Maybe[types.Conditions]
	Location *time.Location
	Buckets  []forecast.Bucket
	Day      int
	Updated  time.Time
}

type Controller struct {
	logger   *slog.Logger
	clientID string
	provider types.WeatherProvider
	store    Store
	timeout  time.Duration
	seq      Sequence

	mu       sync.Mutex
	state    State
	lastUsed time.Time
	restored bool
}

func NewController(clientID string, provider types.WeatherProvider, store Store, prefs types.Preferences, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{
		logger:   slog.Default().With("module", "dashboard", "client", clientID),
		clientID: clientID,
		provider: provider,
		store:    store,
		timeout:  timeout,
		state:    State{Prefs: prefs},
		lastUsed: time.Now(),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = time.Now()
	return c.state
}

// Search fetches current conditions and the forecast for query. It
// reports whether the outcome was applied to the state; results of a
// search overtaken by a newer one, blank ones included, are discarded.
// A search whose caller canceled ctx leaves the state untouched.
func (c *Controller) Search(ctx context.Context, query string) (bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		// Supersedes any search still in flight.
		c.seq.Next()
		c.mu.Lock()
		c.state.Prompt = true
		c.state.Err = nil
		c.mu.Unlock()
		return true, ErrEmptyQuery
	}

	ticket := c.seq.Next()
	cond, fc, err := c.fetch(ctx, query)

	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		c.logger.Debug("search canceled, keeping previous state", slog.String("query", query))
		return false, fmt.Errorf("search for %q: %w", query, ctx.Err())
	}

	c.mu.Lock()
	if !c.seq.IsLatest(ticket) {
		c.mu.Unlock()
		c.logger.Debug("discarding stale search result", slog.String("query", query), slog.Uint64("ticket", ticket))
		return false, nil
	}

	c.lastUsed = time.Now()
	c.state.Query = query
	c.state.Prompt = false
	c.state.Day = 0
	c.state.Updated = time.Now()
	if err != nil {
		c.state.Err = err
		c.state.Current = maybe.None[types.Conditions]()
		c.state.Buckets = nil
		c.mu.Unlock()
		c.logger.Warn("search failed", slog.String("query", query), slog.Any("error", err))
		return true, fmt.Errorf("search for %q: %w", query, err)
	}

	loc := fc.Location(hours.GuiLocation())
	c.state.Err = nil
	c.state.Current = maybe.Some(cond)
	c.state.Location = loc
	c.state.Buckets = forecast.BucketByDay(fc.Samples, loc)
	c.state.Prefs.LastCity = query
	c.mu.Unlock()

	c.logger.Info("search applied", slog.String("query", query), slog.Int("samples", len(fc.Samples)))
	c.persist(ctx, types.PrefLastCity, query)
	if err := c.store.RecordSearch(ctx, query, time.Now()); err != nil {
		c.logger.Error("recording search", slog.Any("error", err))
	}

	return true, nil
}

func (c *Controller) fetch(ctx context.Context, query string) (types.Conditions, types.Forecast, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var cond types.Conditions
	var fc types.Forecast
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cond, err = c.provider.GetConditions(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		fc, err = c.provider.GetForecast(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return types.Conditions{}, types.Forecast{}, err
	}

	return cond, fc, nil
}

// RestoreLastCity searches the stored last city once per session, and
// only when nothing has been searched yet.
func (c *Controller) RestoreLastCity(ctx context.Context) (bool, error) {
	c.mu.Lock()
	city := c.state.Prefs.LastCity
	skip := c.restored || city == "" || c.state.Query != ""
	c.restored = true
	c.mu.Unlock()

	if skip {
		return false, nil
	}
	return c.Search(ctx, city)
}

// SelectDay picks the day shown in the hourly view.
func (c *Controller) SelectDay(day int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if day < 0 || day >= min(len(c.state.Buckets), forecast.MaxSummaryDays) {
		return fmt.Errorf("%w: %d", ErrDayOutOfRange, day)
	}
	c.state.Day = day
	c.lastUsed = time.Now()
	return nil
}

// SetPreference validates and applies one preference and writes it to
// the store right away.
func (c *Controller) SetPreference(ctx context.Context, key string, value string) error {
	c.mu.Lock()
	switch key {
	case types.PrefTempUnit:
		u, err := types.ParseTempUnit(value)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.state.Prefs.TempUnit = u
		value = string(u)
	case types.PrefWindUnit:
		u, err := types.ParseWindUnit(value)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.state.Prefs.WindUnit = u
		value = string(u)
	case types.PrefTimeFormat:
		f, err := types.ParseTimeFormat(value)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.state.Prefs.TimeFormat = f
		value = string(f)
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownPreference, key)
	}
	c.lastUsed = time.Now()
	c.mu.Unlock()

	return c.persist(ctx, key, value)
}

func (c *Controller) persist(ctx context.Context, key string, value string) error {
	if err := c.store.SavePreference(ctx, c.clientID, key, value); err != nil {
		c.logger.Error("saving preference", slog.String("key", key), slog.Any("error", err))
		return err
	}
	return nil
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}
