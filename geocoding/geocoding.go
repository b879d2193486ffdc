// Package geocoding looks up city suggestions from the Open-Meteo
// geocoding API.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/icodeforyou/weatherboard-go/slice"
	"github.com/icodeforyou/weatherboard-go/types"
)

const BASE_URL = "https://geocoding-api.open-meteo.com"

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Admin1     string  `json:"admin1"`
	Population int64   `json:"population"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type Geocoding struct {
	logger            *slog.Logger
	baseURL           string
	count             int
	priorityCountries []string
	client            *http.Client
}

var _ types.LocationProvider = (*Geocoding)(nil)

func New(baseURL string, count int, timeout time.Duration, priorityCountries []string) *Geocoding {
	if baseURL == "" {
		baseURL = BASE_URL
	}
	return &Geocoding{
		logger:            slog.Default().With("module", "geocoding"),
		baseURL:           strings.TrimRight(baseURL, "/"),
		count:             count,
		priorityCountries: priorityCountries,
		client:            &http.Client{Timeout: timeout},
	}
}

// SearchLocations returns ranked candidates whose name starts with prefix.
func (g *Geocoding) SearchLocations(ctx context.Context, prefix string) ([]types.Location, error) {
	params := url.Values{}
	params.Add("name", strings.TrimSpace(prefix))
	params.Add("count", strconv.Itoa(g.count))
	params.Add("language", "en")
	params.Add("format", "json")
	endpoint := fmt.Sprintf("%s/v1/search?%s", g.baseURL, params.Encode())

	g.logger.Debug("fetching locations from open-meteo...", "url", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting locations: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading geocoding response body: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("error unmarshaling geocoding json: %w", err)
	}

	return Rank(slice.Map(r.Results, toLocation), g.priorityCountries), nil
}

func toLocation(r result) types.Location {
	return types.Location{
		Name:       r.Name,
		Country:    r.Country,
		Admin1:     r.Admin1,
		Population: r.Population,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
	}
}
