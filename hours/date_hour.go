package hours

import (
	"fmt"
	"time"

	"github.com/icodeforyou/weatherboard-go/types"
)

const (
	dateLayout = "2006-01-02"
)

var guiLocation *time.Location = time.UTC

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

func GuiLocation() *time.Location {
	return guiLocation
}

// DayKey is the calendar date of t in loc, i.e. t truncated to local midnight.
func DayKey(t time.Time, loc *time.Location) string {
	return Midnight(t, loc).Format(dateLayout)
}

// Midnight returns local midnight of the day t falls on in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = guiLocation
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// FormatHour renders an hour of day (0-23), e.g. "15:00" or "3 PM".
func FormatHour(hour int, format types.TimeFormat) string {
	hour = ((hour % 24) + 24) % 24
	if format == types.TimeFormat12h {
		h := hour % 12
		if h == 0 {
			h = 12
		}
		if hour < 12 {
			return fmt.Sprintf("%d AM", h)
		}
		return fmt.Sprintf("%d PM", h)
	}
	return fmt.Sprintf("%02d:00", hour)
}

// FormatTime renders the hour of t as seen in loc.
func FormatTime(t time.Time, loc *time.Location, format types.TimeFormat) string {
	if loc == nil {
		loc = guiLocation
	}
	return FormatHour(t.In(loc).Hour(), format)
}

// DayLabel is "Today" for the current date in loc, otherwise the short weekday name.
func DayLabel(dayKey string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = guiLocation
	}
	if dayKey == DayKey(now, loc) {
		return "Today"
	}
	t, err := time.ParseInLocation(dateLayout, dayKey, loc)
	if err != nil {
		return dayKey
	}
	return t.Format("Mon")
}

func FormatTimeInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format("2006-01-02 15:04:05")
}
