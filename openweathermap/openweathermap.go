// Package openweathermap fetches current conditions and the 5 day / 3 hour
// forecast by city name.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icodeforyou/weatherboard-go/slice"
	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
	"golang.org/x/time/rate"
)

type OpenWeatherMap struct {
	logger  *slog.Logger
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

var _ types.WeatherProvider = (*OpenWeatherMap)(nil)

// New creates a client. rps limits outbound requests per second (burst
// requests may be sent at once); rps <= 0 disables the limit.
func New(apiKey string, baseURL string, timeout time.Duration, rps float64, burst int) *OpenWeatherMap {
	if baseURL == "" {
		baseURL = BASE_URL
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &OpenWeatherMap{
		logger:  slog.Default().With("module", "openweathermap"),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, max(burst, 1)),
	}
}

func (o *OpenWeatherMap) Name() string {
	return "OpenWeatherMap"
}

func (o *OpenWeatherMap) GetConditions(ctx context.Context, city string) (types.Conditions, error) {
	var c current
	if err := o.get(ctx, "weather", city, &c); err != nil {
		return types.Conditions{}, err
	}

	code, description := firstCondition(c.Weather)
	return types.Conditions{
		City:          c.Name,
		Country:       c.Sys.Country,
		Time:          time.Unix(c.Dt, 0),
		Temperature:   c.Main.Temp,
		FeelsLike:     c.Main.FeelsLike,
		Humidity:      c.Main.Humidity,
		WindSpeed:     c.Wind.Speed,
		Precipitation: precipitation(c.Rain, c.Snow),
		Code:          code,
		Description:   description,
	}, nil
}

func (o *OpenWeatherMap) GetForecast(ctx context.Context, city string) (types.Forecast, error) {
	var f forecast
	if err := o.get(ctx, "forecast", city, &f); err != nil {
		return types.Forecast{}, err
	}

	return types.Forecast{
		City:           f.City.Name,
		Country:        f.City.Country,
		TimezoneOffset: maybe.FromPtr(f.City.Timezone),
		Samples:        slice.Map(f.List, toForecastSample),
	}, nil
}

func (o *OpenWeatherMap) get(ctx context.Context, endpoint string, city string, out any) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", o.apiKey)
	params.Add("units", "metric")

	o.logger.Debug("fetching from openweathermap...", slog.String("endpoint", endpoint), slog.String("city", city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s?%s", o.baseURL, endpoint, params.Encode()), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	res, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("error getting %s for %s: %w", endpoint, city, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("error reading %s response body: %w", endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e errorBody
		_ = json.Unmarshal(body, &e)
		return fmt.Errorf("%w: %s for %q returned status %d: %s", types.ErrLocationNotFound, endpoint, city, res.StatusCode, e.Message)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling %s json: %w", endpoint, err)
	}

	return nil
}

func toForecastSample(e forecastEntry) types.ForecastSample {
	code, _ := firstCondition(e.Weather)
	return types.ForecastSample{
		Time:          time.Unix(e.Dt, 0),
		Temperature:   e.Main.Temp,
		Humidity:      e.Main.Humidity,
		WindSpeed:     e.Wind.Speed,
		Precipitation: precipitation(e.Rain, e.Snow),
		Code:          code,
	}
}

func firstCondition(conditions []condition) (string, string) {
	if len(conditions) == 0 {
		return "", ""
	}
	return conditions[0].Icon, conditions[0].Description
}

// precipitation adds rain and snow, preferring the 1h volume over the 3h one.
func precipitation(volumes ...*volume) maybe.Maybe[float64] {
	total := 0.0
	found := false
	for _, v := range volumes {
		if v == nil {
			continue
		}
		if v.OneHour != nil {
			total += *v.OneHour
			found = true
		} else if v.ThreeHour != nil {
			total += *v.ThreeHour
			found = true
		}
	}
	if !found {
		return maybe.None[float64]()
	}
	return maybe.Some(total)
}
