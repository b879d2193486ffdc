package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/weatherboard-go/config"
	"github.com/icodeforyou/weatherboard-go/database"
)

func NewMaintenanceTask(logger *slog.Logger, db *database.Database, sessions SessionPruner, cnfg *config.AppConfig) func() {
	return func() {
		logger.Debug("running maintenance task...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if b, err := db.Backup(ctx); err != nil {
			logger.Error("database backup error", slog.Any("error", err))
		} else {
			logger.Debug("database backed up", slog.String("file", b.Name), slog.Int64("bytes", b.Size))
		}

		if n, err := db.PurgeBackups(ctx, cnfg.Database.GetBackupRetentionDays()); err != nil {
			logger.Error("backup maintenance error", slog.Any("error", err))
		} else if n > 0 {
			logger.Info("purged old backups", slog.Int("count", n))
		}

		if err := db.PurgeLog(ctx, cnfg.Logging.GetDbMaxEntries()); err != nil {
			logger.Error("log maintenance error", slog.Any("error", err))
		}

		if err := db.PurgeWeatherSnapshots(ctx, cnfg.Database.GetDataRetentionDays()); err != nil {
			logger.Error("weather_snapshot maintenance error", slog.Any("error", err))
		}

		if err := db.PurgeSearchHistory(ctx, cnfg.Database.GetDataRetentionDays()); err != nil {
			logger.Error("search_history maintenance error", slog.Any("error", err))
		}

		if sessions != nil {
			if n := sessions.Prune(cnfg.Api.GetSessionMaxAge()); n > 0 {
				logger.Info("pruned idle sessions", slog.Int("count", n))
			}
		}

		logger.Info("maintenance task done")
	}
}
