package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/icodeforyou/weatherboard-go/types"
)

func TestSequence(t *testing.T) {
	var s Sequence
	first := s.Next()
	second := s.Next()
	if s.IsLatest(first) || !s.IsLatest(second) || second <= first {
		t.Errorf("got tickets %d, %d", first, second)
	}
}

func TestDebouncerFiresOnceForBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := range 5 {
		d.Trigger(func(context.Context) {
			calls.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("got %d calls, wanted 1", got)
	}
	if got := last.Load(); got != 4 {
		t.Errorf("got call %d, wanted the last one", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func(context.Context) { calls.Add(1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)

	if calls.Load() != 0 {
		t.Error("stopped debouncer fired")
	}
}

func TestDebouncerCancelsRunningTask(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	canceled := make(chan struct{})
	started := make(chan struct{})

	d.Trigger(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(canceled)
	})
	<-started
	d.Trigger(func(context.Context) {})

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Error("running task was not canceled by a new trigger")
	}
}

type fakeLocations struct {
	mu     sync.Mutex
	lookup []string
}

func (f *fakeLocations) SearchLocations(_ context.Context, prefix string) ([]types.Location, error) {
	f.mu.Lock()
	f.lookup = append(f.lookup, prefix)
	f.mu.Unlock()
	return []types.Location{{Name: prefix + "ville", Country: "France"}}, nil
}

func TestSuggester(t *testing.T) {
	locations := &fakeLocations{}
	results := make(chan []types.Location, 10)
	s := NewSuggester(locations, 20*time.Millisecond, 2, time.Second, func(_ string, l []types.Location, _ error) {
		results <- l
	})
	defer s.Stop()

	s.Input("P")
	if got := <-results; len(got) != 0 {
		t.Errorf("got %d suggestions for a single character", len(got))
	}

	for _, text := range []string{"Pa", "Par", "Pari"} {
		s.Input(text)
	}

	select {
	case got := <-results:
		if len(got) != 1 || got[0].Name != "Pariville" {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no suggestions delivered")
	}

	time.Sleep(50 * time.Millisecond)
	locations.mu.Lock()
	defer locations.mu.Unlock()
	if len(locations.lookup) != 1 {
		t.Errorf("got lookups %v, wanted a single one", locations.lookup)
	}
}
