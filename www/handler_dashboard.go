package www

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/icodeforyou/weatherboard-go/dashboard"
	"github.com/icodeforyou/weatherboard-go/types"
)

func controllerFor(w http.ResponseWriter, r *http.Request, sessions *Sessions, registry *dashboard.Registry) (*dashboard.Controller, error) {
	id, err := sessions.ClientID(w, r)
	if err != nil {
		return nil, err
	}
	return registry.Get(r.Context(), id)
}

func renderDashboard(w http.ResponseWriter, logger *slog.Logger, tm *TemplateManager, c *dashboard.Controller) {
	w.Header().Set("Content-Type", "text/html")
	view := dashboard.NewView(c.State(), time.Now())
	if err := tm.ExecuteToWriter("dashboard.html", view, w); err != nil {
		logger.Error("rendering dashboard", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewDashboardHandler renders the current state. The first render of a
// session searches the stored last city.
func NewDashboardHandler(logger *slog.Logger, sessions *Sessions, registry *dashboard.Registry, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		c, err := controllerFor(w, r, sessions, registry)
		if err != nil {
			logger.Error("handling dashboard request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if _, err := c.RestoreLastCity(r.Context()); err != nil {
			logger.Warn("restoring last city failed", slog.Any("error", err))
		}

		renderDashboard(w, logger, tm, c)
	}
}

// NewSearchHandler answers a submitted search with the re-rendered
// dashboard. Failures are part of the rendered state.
func NewSearchHandler(logger *slog.Logger, sessions *Sessions, registry *dashboard.Registry, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		c, err := controllerFor(w, r, sessions, registry)
		if err != nil {
			logger.Error("handling search request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		applied, err := c.Search(r.Context(), r.FormValue("city"))
		switch {
		case errors.Is(err, dashboard.ErrEmptyQuery):
		case err != nil:
			logger.Info("search failed", slog.String("city", r.FormValue("city")), slog.Any("error", err))
		case !applied:
			logger.Debug("search overtaken by a newer one")
		}

		renderDashboard(w, logger, tm, c)
	}
}

func NewDayHandler(logger *slog.Logger, sessions *Sessions, registry *dashboard.Registry, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := controllerFor(w, r, sessions, registry)
		if err != nil {
			logger.Error("handling day request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := c.SelectDay(intOrDefault(r.Form, "day", -1)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		renderDashboard(w, logger, tm, c)
	}
}

func NewPreferencesHandler(logger *slog.Logger, sessions *Sessions, registry *dashboard.Registry, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		c, err := controllerFor(w, r, sessions, registry)
		if err != nil {
			logger.Error("handling preferences request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		key := r.FormValue("key")
		err = c.SetPreference(r.Context(), key, r.FormValue("value"))
		switch {
		case errors.Is(err, types.ErrInvalidPreference), errors.Is(err, dashboard.ErrUnknownPreference):
			logger.Info("rejected preference", slog.String("key", key), slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			// Applied to the session but not stored, the page still reflects it.
			logger.Error("storing preference failed", slog.String("key", key), slog.Any("error", err))
		}

		renderDashboard(w, logger, tm, c)
	}
}
