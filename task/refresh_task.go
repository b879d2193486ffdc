package task

import (
	"context"
	"log/slog"
	"time"
)

type RefreshStatus struct {
	At        time.Time
	Refreshed []string
	Failed    []string
}

// NewRefreshTask re-fetches the most recently searched cities so their
// snapshots stay warm, and publishes the new conditions.
func NewRefreshTask(
	logger *slog.Logger,
	history SearchHistory,
	weather Refresher,
	publisher Publisher,
	maxCities int,
	onRefreshed func(RefreshStatus),
) func() {
	return func() {
		logger.Debug("running refresh task...")

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		recent, err := history.GetRecentSearches(ctx, maxCities)
		if err != nil {
			logger.Error("refresh task error", slog.Any("error", err))
			return
		}

		status := RefreshStatus{At: time.Now()}
		for _, r := range recent {
			c, err := weather.Refresh(ctx, r.Label)
			if err != nil {
				logger.Warn("refreshing city failed", slog.String("city", r.Label), slog.Any("error", err))
				status.Failed = append(status.Failed, r.Label)
				continue
			}
			status.Refreshed = append(status.Refreshed, r.Label)

			if publisher != nil {
				if err := publisher.PublishConditions(r.Label, c); err != nil {
					logger.Warn("publishing conditions failed", slog.String("city", r.Label), slog.Any("error", err))
				}
			}
		}

		if onRefreshed != nil {
			onRefreshed(status)
		}

		logger.Info("refresh task done", slog.Int("refreshed", len(status.Refreshed)), slog.Int("failed", len(status.Failed)))
	}
}
