// Package forecast groups 3-hour forecast samples into calendar days and
// derives the per-day summaries and hourly views shown on the dashboard.
package forecast

import (
	"errors"
	"time"

	"github.com/icodeforyou/weatherboard-go/hours"
	"github.com/icodeforyou/weatherboard-go/types"
)

const (
	// MaxHourlySlots is the number of 3-hour slots in one day.
	MaxHourlySlots = 8
	// MaxSummaryDays is the length of the daily summary strip.
	MaxSummaryDays = 7
)

var ErrEmptyBucket = errors.New("empty day bucket")

type Bucket struct {
	Date    string // 2006-01-02
	Samples []types.ForecastSample
}

type Summary struct {
	Date    string
	MinTemp float64 // °C
	MaxTemp float64 // °C
	Code    string
}

// BucketByDay groups samples by their calendar date in loc. Buckets are
// returned in first-seen order and samples keep their input order.
func BucketByDay(samples []types.ForecastSample, loc *time.Location) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)

	for _, s := range samples {
		key := hours.DayKey(s.Time, loc)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Date: key})
		}
		buckets[i].Samples = append(buckets[i].Samples, s)
	}

	return buckets
}

// Summarize derives min/max temperature and the representative condition
// code of a bucket. An empty bucket yields ErrEmptyBucket together with a
// summary carrying fallbackCode.
func Summarize(b Bucket, fallbackCode string) (Summary, error) {
	if len(b.Samples) == 0 {
		return Summary{Date: b.Date, Code: fallbackCode}, ErrEmptyBucket
	}

	minTemp := b.Samples[0].Temperature
	maxTemp := b.Samples[0].Temperature
	for _, s := range b.Samples[1:] {
		minTemp = min(minTemp, s.Temperature)
		maxTemp = max(maxTemp, s.Temperature)
	}

	code, ok := RepresentativeCode(b.Samples)
	if !ok {
		code = fallbackCode
	}

	return Summary{
		Date:    b.Date,
		MinTemp: minTemp,
		MaxTemp: maxTemp,
		Code:    code,
	}, nil
}

// Summaries returns at most maxDays summaries, skipping empty buckets.
func Summaries(buckets []Bucket, maxDays int, fallbackCode string) []Summary {
	result := make([]Summary, 0, min(len(buckets), max(maxDays, 0)))
	for _, b := range buckets {
		if len(result) >= maxDays {
			break
		}
		s, err := Summarize(b, fallbackCode)
		if err != nil {
			continue
		}
		result = append(result, s)
	}
	return result
}

// RepresentativeCode is the most frequent non-empty code; ties go to the
// code seen first.
func RepresentativeCode(samples []types.ForecastSample) (string, bool) {
	counts := make(map[string]int)
	for _, s := range samples {
		if s.Code != "" {
			counts[s.Code]++
		}
	}

	best := ""
	bestCount := 0
	for _, s := range samples {
		// Strictly greater keeps the earlier code on a tie.
		if c := counts[s.Code]; s.Code != "" && c > bestCount {
			best = s.Code
			bestCount = c
		}
	}

	return best, bestCount > 0
}

// Hourly returns up to MaxHourlySlots samples of the bucket at day, or nil
// when day is out of range.
func Hourly(buckets []Bucket, day int) []types.ForecastSample {
	if day < 0 || day >= len(buckets) {
		return nil
	}
	samples := buckets[day].Samples
	if len(samples) > MaxHourlySlots {
		samples = samples[:MaxHourlySlots]
	}
	return samples
}
