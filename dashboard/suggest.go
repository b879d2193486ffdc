package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/icodeforyou/weatherboard-go/types"
)

const DefaultMinChars = 2

type SuggestFunc func(prefix string, locations []types.Location, err error)

// Suggester turns a stream of keystrokes into debounced location
// lookups. Only the answer to the latest input is delivered.
type Suggester struct {
	logger    *slog.Logger
	locations types.LocationProvider
	debouncer *Debouncer
	seq       Sequence
	minChars  int
	timeout   time.Duration
	deliver   SuggestFunc
}

func NewSuggester(locations types.LocationProvider, debounce time.Duration, minChars int, timeout time.Duration, deliver SuggestFunc) *Suggester {
	if minChars < 1 {
		minChars = DefaultMinChars
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Suggester{
		logger:    slog.Default().With("module", "suggest"),
		locations: locations,
		debouncer: NewDebouncer(debounce),
		minChars:  minChars,
		timeout:   timeout,
		deliver:   deliver,
	}
}

// Input registers the current text of the search box. Text shorter than
// the minimum clears the suggestions without a lookup.
func (s *Suggester) Input(text string) {
	prefix := strings.TrimSpace(text)
	ticket := s.seq.Next()

	if utf8.RuneCountInString(prefix) < s.minChars {
		s.debouncer.Stop()
		s.deliver(prefix, nil, nil)
		return
	}

	s.debouncer.Trigger(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		locations, err := s.locations.SearchLocations(ctx, prefix)
		if !s.seq.IsLatest(ticket) {
			s.logger.Debug("discarding stale suggestions", slog.String("prefix", prefix))
			return
		}
		if err != nil {
			s.logger.Warn("location lookup failed", slog.String("prefix", prefix), slog.Any("error", err))
		}
		s.deliver(prefix, locations, err)
	})
}

func (s *Suggester) Stop() {
	s.seq.Next()
	s.debouncer.Stop()
}
