package www

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/icodeforyou/weatherboard-go/dashboard"
	"github.com/icodeforyou/weatherboard-go/forecast"
	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
)

func TestDashboardHidesEmptyHourSlots(t *testing.T) {
	tm, err := NewTemplateManager(slog.Default(), nil)
	if err != nil {
		t.Fatalf("NewTemplateManager() unexpected error: %v", err)
	}

	start := time.Date(2025, 5, 1, 15, 0, 0, 0, time.UTC)
	var samples []types.ForecastSample
	for i := range 3 {
		samples = append(samples, types.ForecastSample{
			Time:        start.Add(time.Duration(i*3) * time.Hour),
			Temperature: 12,
			Code:        "04d",
		})
	}
	state := dashboard.State{
		Prefs:    types.DefaultPreferences(),
		Query:    "London",
		Current:  maybe.Some(types.Conditions{City: "London", Country: "GB", Temperature: 12, Code: "04d"}),
		Location: time.UTC,
		Buckets:  []forecast.Bucket{{Date: "2025-05-01", Samples: samples}},
	}

	buf, err := tm.Execute("dashboard.html", dashboard.NewView(state, start))
	if err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	html := buf.String()

	if got := strings.Count(html, `<div class="hour">`); got != 3 {
		t.Errorf("got %d visible hour slots, wanted 3", got)
	}
	if got := strings.Count(html, `<div class="hour empty" hidden>`); got != forecast.MaxHourlySlots-3 {
		t.Errorf("got %d hidden hour slots, wanted %d", got, forecast.MaxHourlySlots-3)
	}
	for _, want := range []string{"15:00", "18:00", "21:00"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected hour %s in the rendered slots", want)
		}
	}
}
