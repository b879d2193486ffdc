package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/icodeforyou/weatherboard-go/types"
)

// NewSuggestHandler answers ?q= with ranked locations as JSON. Pages with
// a web socket get suggestions pushed instead.
func NewSuggestHandler(logger *slog.Logger, locations types.LocationProvider, minChars int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result := []types.Location{}
		if q := strings.TrimSpace(r.URL.Query().Get("q")); utf8.RuneCountInString(q) >= minChars {
			found, err := locations.SearchLocations(r.Context(), q)
			if err != nil {
				logger.Warn("handling suggest request", slog.Any("error", err))
				http.Error(w, "location lookup failed", http.StatusBadGateway)
				return
			}
			result = append(result, found...)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Error("handling suggest request", slog.Any("error", err))
		}
	}
}
