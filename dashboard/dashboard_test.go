package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	release map[string]chan struct{} // blocks the forecast fetch for a city
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetConditions(_ context.Context, city string) (types.Conditions, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if city == "Atlantis" {
		return types.Conditions{}, types.ErrLocationNotFound
	}
	return types.Conditions{City: city, Country: "GB", Temperature: 20, FeelsLike: 18.5, Humidity: 70, WindSpeed: 10, Code: "01d"}, nil
}

func (f *fakeProvider) GetForecast(ctx context.Context, city string) (types.Forecast, error) {
	f.mu.Lock()
	ch := f.release[city]
	f.mu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return types.Forecast{}, ctx.Err()
		}
	}
	if city == "Atlantis" {
		return types.Forecast{}, types.ErrLocationNotFound
	}

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	var samples []types.ForecastSample
	for i := range 20 {
		samples = append(samples, types.ForecastSample{
			Time:        start.Add(time.Duration(i) * 3 * time.Hour),
			Temperature: float64(10 + i),
			WindSpeed:   1,
			Code:        "02d",
		})
	}
	return types.Forecast{City: city, TimezoneOffset: maybe.Some(0), Samples: samples}, nil
}

type memoryStore struct {
	mu       sync.Mutex
	prefs    map[string]map[string]string
	searches []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{prefs: make(map[string]map[string]string)}
}

func (m *memoryStore) GetPreferences(_ context.Context, clientID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.prefs[clientID] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) SavePreference(_ context.Context, clientID string, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs[clientID] == nil {
		m.prefs[clientID] = make(map[string]string)
	}
	m.prefs[clientID][key] = value
	return nil
}

func (m *memoryStore) RecordSearch(_ context.Context, label string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, label)
	return nil
}

func newTestController(p *fakeProvider, s *memoryStore) *Controller {
	return NewController("client", p, s, types.DefaultPreferences(), time.Second)
}

func TestSearchAppliesResults(t *testing.T) {
	store := newMemoryStore()
	c := newTestController(&fakeProvider{}, store)

	applied, err := c.Search(context.Background(), "  London ")
	if err != nil || !applied {
		t.Fatalf("Search() = %v, %v", applied, err)
	}

	s := c.State()
	if s.Query != "London" || !s.Current.IsValid() {
		t.Errorf("got state %+v", s)
	}
	total := 0
	for _, b := range s.Buckets {
		total += len(b.Samples)
	}
	if len(s.Buckets) != 3 || total != 20 {
		t.Errorf("got %d buckets with %d samples, wanted 3 with 20", len(s.Buckets), total)
	}
	if store.prefs["client"][types.PrefLastCity] != "London" {
		t.Errorf("last city not persisted: %v", store.prefs)
	}
	if len(store.searches) != 1 {
		t.Errorf("got %d recorded searches, wanted 1", len(store.searches))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	p := &fakeProvider{}
	c := newTestController(p, newMemoryStore())

	_, err := c.Search(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("got %v, wanted ErrEmptyQuery", err)
	}
	if p.calls != 0 {
		t.Errorf("got %d provider calls for blank input", p.calls)
	}
	if v := NewView(c.State(), time.Now()); v.Prompt != EmptyPrompt {
		t.Errorf("got prompt %q", v.Prompt)
	}
}

func TestSearchFailureShowsPlaceholders(t *testing.T) {
	c := newTestController(&fakeProvider{}, newMemoryStore())
	_, _ = c.Search(context.Background(), "London")

	_, err := c.Search(context.Background(), "Atlantis")
	if !errors.Is(err, types.ErrLocationNotFound) {
		t.Fatalf("got %v, wanted ErrLocationNotFound", err)
	}

	v := NewView(c.State(), time.Now())
	if v.Error != "Could not find weather for Atlantis" {
		t.Errorf("got error %q", v.Error)
	}
	if v.HasWeather || v.Current.Temperature != Placeholder || v.Current.Wind != Placeholder {
		t.Errorf("got %+v, wanted placeholders", v.Current)
	}
	if len(v.Days) != 0 {
		t.Errorf("got %d days after failure", len(v.Days))
	}
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	p := &fakeProvider{release: map[string]chan struct{}{"Paris": slow}}
	c := newTestController(p, newMemoryStore())

	done := make(chan bool)
	go func() {
		applied, _ := c.Search(context.Background(), "Paris")
		done <- applied
	}()

	// Give the first search time to take its ticket.
	time.Sleep(50 * time.Millisecond)
	if applied, err := c.Search(context.Background(), "London"); !applied || err != nil {
		t.Fatalf("second Search() = %v, %v", applied, err)
	}
	close(slow)

	if <-done {
		t.Error("stale search was applied")
	}
	if got := c.State().Query; got != "London" {
		t.Errorf("got query %q, wanted London", got)
	}
}

func TestBlankSearchSupersedesPending(t *testing.T) {
	slow := make(chan struct{})
	p := &fakeProvider{release: map[string]chan struct{}{"Paris": slow}}
	c := newTestController(p, newMemoryStore())

	done := make(chan bool)
	go func() {
		applied, _ := c.Search(context.Background(), "Paris")
		done <- applied
	}()

	time.Sleep(50 * time.Millisecond)
	if _, err := c.Search(context.Background(), "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("got %v, wanted ErrEmptyQuery", err)
	}
	close(slow)

	if <-done {
		t.Error("search pending before the blank submit was applied")
	}
	s := c.State()
	if !s.Prompt || s.Current.IsValid() || s.Query != "" {
		t.Errorf("got prompt=%v current=%v query=%q; wanted the prompt only", s.Prompt, s.Current.IsValid(), s.Query)
	}
}

func TestCanceledSearchKeepsState(t *testing.T) {
	slow := make(chan struct{})
	defer close(slow)
	p := &fakeProvider{release: map[string]chan struct{}{"Paris": slow}}
	c := newTestController(p, newMemoryStore())

	if _, err := c.Search(context.Background(), "London"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	applied, err := c.Search(ctx, "Paris")
	if applied || !errors.Is(err, context.Canceled) {
		t.Fatalf("Search() = %v, %v; wanted not applied and context.Canceled", applied, err)
	}

	s := c.State()
	if s.Query != "London" || !s.Current.IsValid() || len(s.Buckets) == 0 || s.Err != nil {
		t.Errorf("got query=%q current=%v buckets=%d err=%v; wanted London kept", s.Query, s.Current.IsValid(), len(s.Buckets), s.Err)
	}
}

func TestSearchTimeoutIsFailure(t *testing.T) {
	slow := make(chan struct{})
	defer close(slow)
	p := &fakeProvider{release: map[string]chan struct{}{"Paris": slow}}
	c := NewController("client", p, newMemoryStore(), types.DefaultPreferences(), 50*time.Millisecond)

	applied, err := c.Search(context.Background(), "Paris")
	if !applied || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Search() = %v, %v; wanted applied with a deadline error", applied, err)
	}
	if s := c.State(); s.Err == nil || s.Current.IsValid() {
		t.Errorf("timeout should show as a failure, got %+v", s)
	}
}

func TestSelectDay(t *testing.T) {
	c := newTestController(&fakeProvider{}, newMemoryStore())
	_, _ = c.Search(context.Background(), "London")

	if err := c.SelectDay(2); err != nil {
		t.Fatalf("SelectDay(2) unexpected error: %v", err)
	}
	for _, day := range []int{-1, 3} {
		if err := c.SelectDay(day); !errors.Is(err, ErrDayOutOfRange) {
			t.Errorf("SelectDay(%d) = %v, wanted ErrDayOutOfRange", day, err)
		}
	}

	v := NewView(c.State(), time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	if !v.Days[2].Selected || v.Days[0].Label != "Today" {
		t.Errorf("got days %+v", v.Days)
	}
	// Day 3 of the forecast only has 4 samples.
	visible := 0
	for _, h := range v.Hours {
		if h.IsValid() {
			visible++
		}
	}
	if len(v.Hours) != 8 || visible != 4 {
		t.Errorf("got %d slots with %d visible, wanted 8 with 4", len(v.Hours), visible)
	}
}

func TestUnitChangeRederivesView(t *testing.T) {
	store := newMemoryStore()
	c := newTestController(&fakeProvider{}, store)
	_, _ = c.Search(context.Background(), "London")

	v := NewView(c.State(), time.Now())
	if v.Current.Temperature != "20" || v.Current.Wind != "36" || v.TempSymbol != "°C" {
		t.Errorf("got %+v", v.Current)
	}

	if err := c.SetPreference(context.Background(), types.PrefTempUnit, "fahrenheit"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPreference(context.Background(), types.PrefWindUnit, "mph"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPreference(context.Background(), types.PrefTimeFormat, "12h"); err != nil {
		t.Fatal(err)
	}

	v = NewView(c.State(), time.Now())
	if v.Current.Temperature != "68" || v.Current.Wind != "22" || v.TempSymbol != "°F" {
		t.Errorf("got %+v", v.Current)
	}
	if got := v.Hours[0].Value().Time; got != "12 AM" {
		t.Errorf("got first hour %q, wanted 12 AM", got)
	}

	// Switching back derives from the raw value again instead of the
	// rounded Fahrenheit text.
	_ = c.SetPreference(context.Background(), types.PrefTempUnit, "celsius")
	if got := NewView(c.State(), time.Now()).Current.Temperature; got != "20" {
		t.Errorf("got %s after switching back, wanted 20", got)
	}

	saved := store.prefs["client"]
	if saved[types.PrefWindUnit] != "mph" || saved[types.PrefTimeFormat] != "12h" || saved[types.PrefTempUnit] != "celsius" {
		t.Errorf("got saved preferences %v", saved)
	}
}

func TestSetPreferenceRejectsInvalid(t *testing.T) {
	store := newMemoryStore()
	c := newTestController(&fakeProvider{}, store)

	if err := c.SetPreference(context.Background(), types.PrefTempUnit, "kelvin"); err == nil {
		t.Error("expected error for unknown unit")
	}
	if err := c.SetPreference(context.Background(), "color", "red"); !errors.Is(err, ErrUnknownPreference) {
		t.Errorf("got %v, wanted ErrUnknownPreference", err)
	}
	if len(store.prefs) != 0 {
		t.Errorf("invalid preferences were stored: %v", store.prefs)
	}
}

func TestRegistryLoadsPreferences(t *testing.T) {
	store := newMemoryStore()
	_ = store.SavePreference(context.Background(), "abc", types.PrefTempUnit, "fahrenheit")
	_ = store.SavePreference(context.Background(), "abc", types.PrefLastCity, "Oslo")
	r := NewRegistry(&fakeProvider{}, store, time.Second)

	c, err := r.Get(context.Background(), "abc")
	if err != nil {
		t.Fatal(err)
	}
	if c.State().Prefs.TempUnit != types.Fahrenheit {
		t.Errorf("got %+v", c.State().Prefs)
	}
	same, _ := r.Get(context.Background(), "abc")
	if same != c || r.Len() != 1 {
		t.Error("registry created a second controller for the same client")
	}

	applied, err := c.RestoreLastCity(context.Background())
	if !applied || err != nil || c.State().Query != "Oslo" {
		t.Errorf("RestoreLastCity() = %v, %v; query %q", applied, err, c.State().Query)
	}
	if again, _ := c.RestoreLastCity(context.Background()); again {
		t.Error("last city restored twice")
	}

	if n := r.Prune(time.Hour); n != 0 {
		t.Errorf("pruned %d active sessions", n)
	}
	if n := r.Prune(-time.Second); n != 1 || r.Len() != 0 {
		t.Errorf("pruned %d, %d left", n, r.Len())
	}
}

func TestRegistrySeedsPreferences(t *testing.T) {
	store := newMemoryStore()
	_ = store.SavePreference(context.Background(), "abc", types.PrefTempUnit, "kelvin")
	_ = store.SavePreference(context.Background(), "abc", types.PrefWindUnit, "mph")
	r := NewRegistry(&fakeProvider{}, store, time.Second)

	if _, err := r.Get(context.Background(), "abc"); err != nil {
		t.Fatal(err)
	}

	saved := store.prefs["abc"]
	want := map[string]string{
		types.PrefTempUnit:   "celsius",
		types.PrefWindUnit:   "mph",
		types.PrefTimeFormat: "24h",
	}
	for key, value := range want {
		if saved[key] != value {
			t.Errorf("got %s=%q, wanted %q", key, saved[key], value)
		}
	}
	if _, ok := saved[types.PrefLastCity]; ok {
		t.Error("an empty last city should not be stored")
	}
}
