package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/icodeforyou/weatherboard-go/config"
	"github.com/icodeforyou/weatherboard-go/database"
	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/robfig/cron/v3"
)

type SearchHistory interface {
	GetRecentSearches(ctx context.Context, limit int) ([]database.SearchHistoryRow, error)
}

// Refresher fetches fresh conditions for a city, bypassing any cache.
type Refresher interface {
	Refresh(ctx context.Context, city string) (types.Conditions, error)
}

type Publisher interface {
	PublishConditions(city string, c types.Conditions) error
}

type SessionPruner interface {
	Prune(maxIdle time.Duration) int
}

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	RefreshTask     func()
	MaintenanceTask func()
}

// NewTasks wires the scheduled jobs. publisher may be nil when MQTT is
// not configured; onRefreshed is called after every refresh run.
func NewTasks(
	db *database.Database,
	weather Refresher,
	publisher Publisher,
	sessions SessionPruner,
	onRefreshed func(RefreshStatus),
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            newCron(),
		cnfg:            cnfg,
		RefreshTask:     NewRefreshTask(logger.With(slog.String("task", "refresh")), db, weather, publisher, cnfg.Refresh.GetMaxCities(), onRefreshed),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, sessions, cnfg),
	}
}

// cronLogger passes cron's own logging on to slog. Panics in a task are
// recovered and logged instead of taking the process down.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}

func newCron() *cron.Cron {
	logger := cronLogger{logger: slog.Default().With("module", "cron")}
	return cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
}

func (t *Tasks) Run() error {
	if t.cnfg.Refresh.RunAt != "" {
		if _, err := t.cron.AddFunc(t.cnfg.Refresh.RunAt, t.RefreshTask); err != nil {
			return fmt.Errorf("scheduling refresh task: %w", err)
		}
	}
	if _, err := t.cron.AddFunc(t.cnfg.Database.GetMaintenanceRunAt(), t.MaintenanceTask); err != nil {
		return fmt.Errorf("scheduling maintenance task: %w", err)
	}
	t.cron.Start()
	return nil
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
