// Package cache keeps recent provider responses in the weather_snapshot
// table so repeated searches for a city do not hit the upstream API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/icodeforyou/weatherboard-go/database"
	"github.com/icodeforyou/weatherboard-go/types"
)

type SnapshotStore interface {
	GetWeatherSnapshot(ctx context.Context, city string, kind string) (database.WeatherSnapshotRow, error)
	SaveWeatherSnapshot(ctx context.Context, row database.WeatherSnapshotRow) error
}

type Stats struct {
	Hits   int64
	Misses int64
}

type Provider struct {
	logger   *slog.Logger
	upstream types.WeatherProvider
	store    SnapshotStore
	ttl      time.Duration
	now      func() time.Time
	hits     atomic.Int64
	misses   atomic.Int64
}

var _ types.WeatherProvider = (*Provider)(nil)

// New wraps upstream. A ttl <= 0 disables lookups but responses are
// still stored.
func New(upstream types.WeatherProvider, store SnapshotStore, ttl time.Duration) *Provider {
	return &Provider{
		logger:   slog.Default().With("module", "cache"),
		upstream: upstream,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (p *Provider) Name() string {
	return p.upstream.Name()
}

func (p *Provider) Stats() Stats {
	return Stats{Hits: p.hits.Load(), Misses: p.misses.Load()}
}

func (p *Provider) GetConditions(ctx context.Context, city string) (types.Conditions, error) {
	return cached(ctx, p, city, database.SnapshotConditions, p.upstream.GetConditions)
}

func (p *Provider) GetForecast(ctx context.Context, city string) (types.Forecast, error) {
	return cached(ctx, p, city, database.SnapshotForecast, p.upstream.GetForecast)
}

// Refresh bypasses the lookup and stores fresh responses.
func (p *Provider) Refresh(ctx context.Context, city string) (types.Conditions, error) {
	c, err := p.upstream.GetConditions(ctx, city)
	if err != nil {
		return types.Conditions{}, err
	}
	p.save(ctx, key(city), database.SnapshotConditions, c)

	f, err := p.upstream.GetForecast(ctx, city)
	if err != nil {
		return c, err
	}
	p.save(ctx, key(city), database.SnapshotForecast, f)

	return c, nil
}

func cached[T any](ctx context.Context, p *Provider, city string, kind string, fetch func(context.Context, string) (T, error)) (T, error) {
	k := key(city)
	if p.ttl > 0 {
		row, err := p.store.GetWeatherSnapshot(ctx, k, kind)
		if err != nil {
			p.logger.Warn("snapshot lookup failed", slog.String("city", k), slog.Any("error", err))
		} else if !row.IsZero() && p.now().Sub(row.Fetched) < p.ttl {
			var v T
			err := json.Unmarshal(row.Data, &v)
			if err == nil {
				p.hits.Add(1)
				p.logger.Debug("snapshot hit", slog.String("city", k), slog.String("kind", kind))
				return v, nil
			}
			p.logger.Warn("discarding unreadable snapshot", slog.String("city", k), slog.Any("error", err))
		}
	}

	p.misses.Add(1)
	v, err := fetch(ctx, city)
	if err != nil {
		return v, err
	}
	p.save(ctx, k, kind, v)
	return v, nil
}

func (p *Provider) save(ctx context.Context, city string, kind string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("marshalling snapshot", slog.String("city", city), slog.Any("error", err))
		return
	}
	err = p.store.SaveWeatherSnapshot(ctx, database.WeatherSnapshotRow{
		City:    city,
		Kind:    kind,
		Data:    data,
		Fetched: p.now(),
	})
	if err != nil {
		p.logger.Error(fmt.Sprintf("storing %s snapshot", kind), slog.String("city", city), slog.Any("error", err))
	}
}

func key(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
