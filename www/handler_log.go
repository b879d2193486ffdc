package www

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/weatherboard-go/database"
	"github.com/icodeforyou/weatherboard-go/logging"
)

type LogReader interface {
	GetLogEntries(ctx context.Context, q database.LogQuery) ([]database.LogEntryRow, error)
}

// NewLogHandler serves the log page. With ?page=N it renders only the
// rows of that page, which the page appends while scrolling.
func NewLogHandler(logger *slog.Logger, logs LogReader, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html")

		query := r.URL.Query()
		page := intOrDefault(query, "page", 0)
		if page < 1 {
			if err := tm.ExecuteToWriter("log.html", nil, w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		pageSize := intOrDefault(query, "pageSize", 25)
		if pageSize < 1 {
			pageSize = 25
		}
		minLevel := slog.LevelDebug
		if lvl := query.Get("level"); lvl != "" {
			var err error
			if minLevel, err = logging.ParseLevel(lvl); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		contains := query.Get("q")
		e, err := logs.GetLogEntries(r.Context(), database.LogQuery{
			MinLevel: minLevel,
			Contains: contains,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		data := struct {
			Page     int
			PageSize int
			Level    string
			Query    string
			More     bool
			Entries  []database.LogEntryRow
		}{
			Page:     page + 1,
			PageSize: pageSize,
			Level:    minLevel.String(),
			Query:    contains,
			More:     len(e) == pageSize,
			Entries:  e,
		}

		if err := tm.ExecuteToWriter("log_entries.html", data, w); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
