package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/icodeforyou/weatherboard-go/types"
)

func TestRankPriorityCountryFirst(t *testing.T) {
	input := []types.Location{
		{Name: "Paris", Country: "France", Population: 2_000_000},
		{Name: "Paris", Country: "USA", Population: 25_000},
	}

	got := Rank(input, []string{"USA"})
	if got[0].Country != "USA" {
		t.Errorf("got %s first, wanted USA", got[0].Country)
	}
	if input[0].Country != "France" {
		t.Error("Rank() modified its input")
	}
}

func TestRankPopulationAndStability(t *testing.T) {
	input := []types.Location{
		{Name: "a", Country: "X", Population: 10},
		{Name: "b", Country: "X", Population: 500},
		{Name: "c", Country: "Y", Population: 10},
		{Name: "d", Country: "united states", Population: 1},
		{Name: "e", Country: "Z", Population: 10},
	}

	got := Rank(input, []string{"United States"})
	want := []string{"d", "b", "a", "c", "e"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: got %s, wanted %s", i, got[i].Name, name)
		}
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil, []string{"USA"}); len(got) != 0 {
		t.Errorf("got %d locations, wanted 0", len(got))
	}
}

func TestSearchLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Par" {
			t.Errorf("got name %q, wanted Par", got)
		}
		if got := r.URL.Query().Get("count"); got != "5" {
			t.Errorf("got count %q, wanted 5", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"name":"Paris","country":"France","admin1":"Île-de-France","population":2138551,"latitude":48.85,"longitude":2.35},
			{"name":"Paris","country":"United States","admin1":"Texas","population":24171,"latitude":33.66,"longitude":-95.55}
		]}`))
	}))
	defer srv.Close()

	g := New(srv.URL, 5, time.Second, []string{"United States"})
	got, err := g.SearchLocations(context.Background(), " Par ")
	if err != nil {
		t.Fatalf("SearchLocations() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d locations, wanted 2", len(got))
	}
	if got[0].Admin1 != "Texas" {
		t.Errorf("got %+v first, wanted the Texas entry", got[0])
	}
}

func TestSearchLocationsNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, 5, time.Second, nil).SearchLocations(context.Background(), "zzzz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d locations, wanted 0", len(got))
	}
}

func TestSearchLocationsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL, 5, time.Second, nil).SearchLocations(context.Background(), "Par"); err == nil {
		t.Error("expected error for non-200 status")
	}
}
