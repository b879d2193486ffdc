package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/icodeforyou/weatherboard-go/cache"
	"github.com/icodeforyou/weatherboard-go/config"
	"github.com/icodeforyou/weatherboard-go/dashboard"
	"github.com/icodeforyou/weatherboard-go/database"
	"github.com/icodeforyou/weatherboard-go/task"
	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
)

type Server struct {
	logger    *slog.Logger
	config    *config.AppConfig
	db        *database.Database
	registry  *dashboard.Registry
	locations types.LocationProvider
	sessions  *Sessions
	hub       *Hub
	tm        *TemplateManager
	mux       *http.ServeMux
}

//go:embed static
var embeddedStaticDir embed.FS

// NewServer wires all routes. cacheStats may be nil when the snapshot
// cache is not in use.
func NewServer(
	cnfg *config.AppConfig,
	db *database.Database,
	registry *dashboard.Registry,
	locations types.LocationProvider,
	cacheStats func() cache.Stats,
	version string,
) (*Server, error) {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.Api.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization error: %w", err)
	}

	s := &Server{
		logger:    logger,
		config:    cnfg,
		db:        db,
		registry:  registry,
		locations: locations,
		sessions:  NewSessions(cnfg.Api.GetSessionKey(), cnfg.Api.GetSessionMaxAge()),
		hub:       NewHub(logger),
		tm:        tm,
		mux:       http.NewServeMux(),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	s.mux.Handle("/", staticFilesHandler(cnfg.Api.WwwDir))

	s.mux.Handle("/dashboard", logReqMW(NewDashboardHandler(
		logger.With(slog.String("handler", "dashboard")),
		s.sessions,
		s.registry,
		s.tm)))

	s.mux.Handle("/search", logReqMW(NewSearchHandler(
		logger.With(slog.String("handler", "search")),
		s.sessions,
		s.registry,
		s.tm)))

	s.mux.Handle("/day", logReqMW(NewDayHandler(
		logger.With(slog.String("handler", "day")),
		s.sessions,
		s.registry,
		s.tm)))

	s.mux.Handle("/preferences", logReqMW(NewPreferencesHandler(
		logger.With(slog.String("handler", "preferences")),
		s.sessions,
		s.registry,
		s.tm)))

	s.mux.Handle("/suggest", logReqMW(NewSuggestHandler(
		logger.With(slog.String("handler", "suggest")),
		s.locations,
		cnfg.Suggest.GetMinChars())))

	s.mux.Handle("/chart", logReqMW(NewChartHandler(
		logger.With(slog.String("handler", "chart")),
		s.sessions,
		s.registry)))

	s.mux.Handle("/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		s.db,
		s.tm)))

	s.mux.Handle("/sys_info", logReqMW(NewSysInfoHandler(
		logger.With(slog.String("handler", "sys_info")),
		s.tm,
		SysInfo{Version: version, StartTime: time.Now(), Provider: registry.ProviderName()},
		func() SysStats {
			stats := SysStats{Sessions: s.registry.Len(), Sockets: s.hub.Len()}
			if cacheStats != nil {
				stats.Cache = cacheStats()
			}
			backups, err := s.db.ListBackups()
			if err != nil {
				s.logger.Warn("listing backups failed", slog.Any("error", err))
			}
			stats.Backups = len(backups)
			if len(backups) > 0 {
				stats.LastBackup = maybe.Some(backups[0].Created)
			}
			return stats
		})))

	// Same origin only, see upgrader.
	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		id, err := s.sessions.ClientID(w, r)
		if err != nil {
			s.logger.Error("web socket session failed", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		client, err := NewClient(s.hub, w, r, id)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client

		suggester := dashboard.NewSuggester(
			s.locations,
			cnfg.Suggest.GetDebounce(),
			cnfg.Suggest.GetMinChars(),
			cnfg.OpenWeatherMap.GetTimeout(),
			func(prefix string, locations []types.Location, err error) {
				s.sendSuggestions(client, prefix, locations, err)
			})

		go client.WritePump()
		go func() {
			defer suggester.Stop()
			client.ReadPump(func(m Message) {
				if m.Type == "suggest" {
					suggester.Input(m.Text)
				}
			})
		}()
	})

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) sendSuggestions(c *Client, prefix string, locations []types.Location, err error) {
	data := struct {
		Prefix    string
		Locations []types.Location
		Failed    bool
	}{prefix, locations, err != nil}

	buf, execErr := s.tm.Execute("suggestions.html", data)
	if execErr != nil {
		s.logger.Error("template execution failed", slog.Any("error", execErr))
		return
	}
	c.SendMessage(Message{Target: "suggestions", Html: buf.String()})
}

// BroadcastRefresh tells every connected page which cities were just
// refreshed.
func (s *Server) BroadcastRefresh(status task.RefreshStatus) {
	buf, err := s.tm.Execute("status.html", status)
	if err != nil {
		s.logger.Error("template execution failed", slog.Any("error", err))
		return
	}
	msg, err := jsonMessage(Message{Target: "status", Html: buf.String()})
	if err != nil {
		s.logger.Error("status message failed", slog.Any("error", err))
		return
	}
	s.hub.Broadcast <- msg
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.config.Api.Port)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Api.Address, s.config.Api.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.Any("error", err))
		}

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
		}
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
