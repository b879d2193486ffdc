package openweathermap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/icodeforyou/weatherboard-go/types"
)

const currentJSON = `{
	"name": "London",
	"dt": 1746093600,
	"main": {"temp": 14.6, "feels_like": 13.9, "humidity": 71},
	"wind": {"speed": 4.1, "deg": 240},
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"rain": {"1h": 0.42},
	"sys": {"country": "GB"}
}`

const forecastJSON = `{
	"city": {"name": "London", "country": "GB", "timezone": 3600},
	"list": [
		{"dt": 1746100800, "main": {"temp": 15.2, "humidity": 60}, "wind": {"speed": 3.2}, "weather": [{"icon": "04d"}]},
		{"dt": 1746111600, "main": {"temp": 16.8, "humidity": 55}, "wind": {"speed": 2.9}, "weather": [{"icon": "10d"}], "rain": {"3h": 1.25}, "snow": {"3h": 0.5}}
	]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("got units %q, wanted metric", got)
		}
		if got := r.URL.Query().Get("appid"); got != "secret" {
			t.Errorf("got appid %q, wanted secret", got)
		}
		if r.URL.Query().Get("q") != "London" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		switch r.URL.Path {
		case "/weather":
			_, _ = w.Write([]byte(currentJSON))
		case "/forecast":
			_, _ = w.Write([]byte(forecastJSON))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGetConditions(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	owm := New("secret", srv.URL, time.Second, 0, 1)
	c, err := owm.GetConditions(context.Background(), "London")
	if err != nil {
		t.Fatalf("GetConditions() unexpected error: %v", err)
	}
	if c.City != "London" || c.Country != "GB" {
		t.Errorf("got %s, %s; wanted London, GB", c.City, c.Country)
	}
	if c.Temperature != 14.6 || c.FeelsLike != 13.9 || c.Humidity != 71 || c.WindSpeed != 4.1 {
		t.Errorf("unexpected measurements: %+v", c)
	}
	if c.Code != "10d" || c.Description != "light rain" {
		t.Errorf("got code %q (%q)", c.Code, c.Description)
	}
	if !c.Precipitation.IsValid() || c.Precipitation.Value() != 0.42 {
		t.Errorf("got precipitation %+v, wanted 0.42", c.Precipitation)
	}
}

func TestGetForecast(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	f, err := New("secret", srv.URL, time.Second, 0, 1).GetForecast(context.Background(), "London")
	if err != nil {
		t.Fatalf("GetForecast() unexpected error: %v", err)
	}
	if len(f.Samples) != 2 {
		t.Fatalf("got %d samples, wanted 2", len(f.Samples))
	}
	if !f.TimezoneOffset.IsValid() || f.TimezoneOffset.Value() != 3600 {
		t.Errorf("got timezone %+v, wanted 3600", f.TimezoneOffset)
	}
	if !f.Samples[0].Time.Equal(time.Unix(1746100800, 0)) {
		t.Errorf("got time %v", f.Samples[0].Time)
	}
	if f.Samples[0].Precipitation.IsValid() {
		t.Errorf("got precipitation %+v for dry sample, wanted none", f.Samples[0].Precipitation)
	}
	if got := f.Samples[1].Precipitation.ValueOrDefault(0); got != 1.75 {
		t.Errorf("got precipitation %f, wanted rain+snow 1.75", got)
	}
	if f.Samples[1].Code != "10d" {
		t.Errorf("got code %q, wanted 10d", f.Samples[1].Code)
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	_, err := New("secret", srv.URL, time.Second, 0, 1).GetConditions(context.Background(), "Atlantis")
	if !errors.Is(err, types.ErrLocationNotFound) {
		t.Errorf("got %v, wanted ErrLocationNotFound", err)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := New("secret", srv.URL, 50*time.Millisecond, 0, 1).GetForecast(context.Background(), "London")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if errors.Is(err, types.ErrLocationNotFound) {
		t.Errorf("timeout should not be reported as not found: %v", err)
	}
}
