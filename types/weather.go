package types

import (
	"context"
	"errors"
	"time"

	"github.com/icodeforyou/weatherboard-go/types/maybe"
)

// ErrLocationNotFound is returned by providers when the upstream API
// answers with a non-success status for a location.
var ErrLocationNotFound = errors.New("location not found")

type Conditions struct {
	City          string
	Country       string
	Time          time.Time
	Temperature   float64 // °C
	FeelsLike     float64 // °C
	Humidity      float64 // %
	WindSpeed     float64 // m/s
	Precipitation maybe.Maybe[float64]
	Code          string
	Description   string
}

// ForecastSample is one 3-hour forecast step.
type ForecastSample struct {
	Time          time.Time
	Temperature   float64 // °C
	Humidity      float64 // %
	WindSpeed     float64 // m/s
	Precipitation maybe.Maybe[float64]
	Code          string
}

type Forecast struct {
	City    string
	Country string
	// UTC offset of the city in seconds, as reported by the provider.
	TimezoneOffset maybe.Maybe[int]
	Samples        []ForecastSample
}

// Location returns the fixed zone of the forecast city, or fallback when
// the provider did not report an offset.
func (f Forecast) Location(fallback *time.Location) *time.Location {
	if !f.TimezoneOffset.IsValid() {
		if fallback == nil {
			return time.UTC
		}
		return fallback
	}
	return time.FixedZone(f.City, f.TimezoneOffset.Value())
}

// Location is a geocoding candidate.
type Location struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Admin1     string  `json:"admin1,omitempty"`
	Population int64   `json:"population"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Label is the text shown in the suggestion dropdown.
func (l Location) Label() string {
	if l.Admin1 != "" && l.Admin1 != l.Name {
		return l.Name + ", " + l.Admin1 + ", " + l.Country
	}
	return l.Name + ", " + l.Country
}

type WeatherProvider interface {
	Name() string
	GetConditions(ctx context.Context, city string) (Conditions, error)
	GetForecast(ctx context.Context, city string) (Forecast, error)
}

type LocationProvider interface {
	SearchLocations(ctx context.Context, prefix string) ([]Location, error)
}
