package www

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/weatherboard-go/convert"
	"github.com/icodeforyou/weatherboard-go/dashboard"
	"github.com/icodeforyou/weatherboard-go/forecast"
	"github.com/icodeforyou/weatherboard-go/hours"
	"github.com/icodeforyou/weatherboard-go/www/chartjs"
)

// NewChartHandler returns temperature and precipitation for the selected
// day as a Chart.js config, in the units the session prefers.
func NewChartHandler(logger *slog.Logger, sessions *Sessions, registry *dashboard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		c, err := controllerFor(w, r, sessions, registry)
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		chart := dayChart(c.State())

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(chart)
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
			return
		}
	}
}

func dayChart(s dashboard.State) chartjs.Chart {
	samples := forecast.Hourly(s.Buckets, s.Day)

	labels := make([]string, len(samples))
	for i, sample := range samples {
		labels[i] = hours.FormatTime(sample.Time, s.Location, s.Prefs.TimeFormat)
	}

	chart := chartjs.NewChart("", labels)
	chart.Data.Datasets[0].Label = "Temperature"
	chart.Data.Datasets[1].Label = "Precipitation"
	for i, sample := range samples {
		t := float64(convert.Temperature(sample.Temperature, s.Prefs.TempUnit))
		chart.Data.Datasets[0].Data[i] = &t
		if sample.Precipitation.IsValid() {
			chart.Data.Datasets[1].Data[i] = chartjs.FixedFloat64(sample.Precipitation.Value(), 1)
		}
	}

	chart.Options.Scales["YAxis1"] = chart.Options.Scales["YAxis1"].
		WithTitle(fmt.Sprintf("Temperature (%s)", s.Prefs.TempUnit.Symbol()))
	chart.Options.Scales["YAxis2"] = chart.Options.Scales["YAxis2"].
		WithTitle("Precipitation (mm)").
		WithMin(0)

	return chart
}
