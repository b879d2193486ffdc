package www

import (
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/icodeforyou/weatherboard-go/cache"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
)

type SysInfo struct {
	Version   string
	StartTime time.Time
	Provider  string
}

type SysStats struct {
	Sessions   int
	Sockets    int
	Cache      cache.Stats
	Backups    int
	LastBackup maybe.Maybe[time.Time]
}

func NewSysInfoHandler(logger *slog.Logger, tm *TemplateManager, sysInfo SysInfo, stats func() SysStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html")

		data := struct {
			SysInfo
			SysStats
			GoVersion string
			Uptime    string
		}{
			SysInfo:   sysInfo,
			SysStats:  stats(),
			GoVersion: runtime.Version(),
			Uptime:    time.Since(sysInfo.StartTime).Round(time.Second).String(),
		}

		if err := tm.ExecuteToWriter("sys_info.html", data, w); err != nil {
			logger.Error("handling sys info request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
