package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/icodeforyou/weatherboard-go/convert"
	"github.com/icodeforyou/weatherboard-go/forecast"
	"github.com/icodeforyou/weatherboard-go/hours"
	"github.com/icodeforyou/weatherboard-go/types"
	"github.com/icodeforyou/weatherboard-go/types/maybe"
)

const (
	Placeholder = "--"
	EmptyPrompt = "Please enter a city name"
)

type CurrentView struct {
	City          string
	Country       string
	Temperature   string
	FeelsLike     string
	Humidity      string
	Wind          string
	Precipitation string
	Description   string
	Icon          string
	Updated       string
}

type DayView struct {
	Index    int
	Label    string
	Date     string
	Min      string
	Max      string
	Icon     string
	Selected bool
}

type HourView struct {
	Time          string
	Temperature   string
	Wind          string
	Humidity      string
	Precipitation string
	Icon          string
}

type View struct {
	Query      string
	Prompt     string
	Error      string
	HasWeather bool
	Current    CurrentView
	Days       []DayView
	Hours      []maybe.Maybe[HourView] // always MaxHourlySlots long
	TempSymbol string
	WindSymbol string
	Prefs      types.Preferences
}

func IconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", code)
}

// NewView derives every display string from the raw values in s using
// the preferences in s.
func NewView(s State, now time.Time) View {
	v := View{
		Query:      s.Query,
		Current:    emptyCurrent(),
		Hours:      make([]maybe.Maybe[HourView], forecast.MaxHourlySlots),
		TempSymbol: s.Prefs.TempUnit.Symbol(),
		WindSymbol: s.Prefs.WindUnit.Symbol(),
		Prefs:      s.Prefs,
	}

	if s.Prompt {
		v.Prompt = EmptyPrompt
	}
	if s.Err != nil {
		v.Error = ErrorMessage(s.Query, s.Err)
	}
	if !s.Current.IsValid() {
		return v
	}

	v.HasWeather = true
	v.Current = currentView(s.Current.Value(), s.Prefs, s.Location)

	fallback := s.Current.Value().Code
	for i, b := range s.Buckets {
		if i >= forecast.MaxSummaryDays {
			break
		}
		sum, err := forecast.Summarize(b, fallback)
		if err != nil {
			continue
		}
		v.Days = append(v.Days, DayView{
			Index:    i,
			Label:    hours.DayLabel(sum.Date, now, s.Location),
			Date:     sum.Date,
			Min:      strconv.Itoa(convert.Temperature(sum.MinTemp, s.Prefs.TempUnit)),
			Max:      strconv.Itoa(convert.Temperature(sum.MaxTemp, s.Prefs.TempUnit)),
			Icon:     IconURL(sum.Code),
			Selected: i == s.Day,
		})
	}

	for i, sample := range forecast.Hourly(s.Buckets, s.Day) {
		v.Hours[i] = maybe.Some(hourView(sample, s.Prefs, s.Location))
	}

	return v
}

// ErrorMessage is the text shown when a search fails.
func ErrorMessage(query string, err error) string {
	if errors.Is(err, ErrEmptyQuery) {
		return EmptyPrompt
	}
	return fmt.Sprintf("Could not find weather for %s", query)
}

func emptyCurrent() CurrentView {
	return CurrentView{
		Temperature:   Placeholder,
		FeelsLike:     Placeholder,
		Humidity:      Placeholder,
		Wind:          Placeholder,
		Precipitation: Placeholder,
	}
}

func currentView(c types.Conditions, p types.Preferences, loc *time.Location) CurrentView {
	return CurrentView{
		City:          c.City,
		Country:       c.Country,
		Temperature:   strconv.Itoa(convert.Temperature(c.Temperature, p.TempUnit)),
		FeelsLike:     strconv.Itoa(convert.Temperature(c.FeelsLike, p.TempUnit)),
		Humidity:      strconv.Itoa(convert.Round(c.Humidity)),
		Wind:          strconv.Itoa(convert.WindSpeed(c.WindSpeed, p.WindUnit)),
		Precipitation: precipitation(c.Precipitation),
		Description:   c.Description,
		Icon:          IconURL(c.Code),
		Updated:       hours.FormatTime(c.Time, loc, p.TimeFormat),
	}
}

func hourView(s types.ForecastSample, p types.Preferences, loc *time.Location) HourView {
	return HourView{
		Time:          hours.FormatTime(s.Time, loc, p.TimeFormat),
		Temperature:   strconv.Itoa(convert.Temperature(s.Temperature, p.TempUnit)),
		Wind:          strconv.Itoa(convert.WindSpeed(s.WindSpeed, p.WindUnit)),
		Humidity:      strconv.Itoa(convert.Round(s.Humidity)),
		Precipitation: precipitation(s.Precipitation),
		Icon:          IconURL(s.Code),
	}
}

func precipitation(mm maybe.Maybe[float64]) string {
	if !mm.IsValid() {
		return "0"
	}
	return strconv.FormatFloat(convert.RoundFloat64(mm.Value(), 1), 'f', -1, 64)
}
