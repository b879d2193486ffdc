package types

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPreference = errors.New("invalid preference value")

type TempUnit string
type WindUnit string
type TimeFormat string

const (
	Celsius    TempUnit = "celsius"
	Fahrenheit TempUnit = "fahrenheit"

	KilometersPerHour WindUnit = "kmh"
	MilesPerHour      WindUnit = "mph"

	TimeFormat24h TimeFormat = "24h"
	TimeFormat12h TimeFormat = "12h"
)

// Keys used in the preference store.
const (
	PrefTempUnit   = "temp_unit"
	PrefWindUnit   = "wind_unit"
	PrefTimeFormat = "time_format"
	PrefLastCity   = "last_city"
)

func (u TempUnit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

func (u WindUnit) Symbol() string {
	if u == MilesPerHour {
		return "mph"
	}
	return "km/h"
}

func ParseTempUnit(s string) (TempUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c", "metric":
		return Celsius, nil
	case "fahrenheit", "f", "imperial":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("%w: temperature unit %q", ErrInvalidPreference, s)
	}
}

func ParseWindUnit(s string) (WindUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kmh", "km/h":
		return KilometersPerHour, nil
	case "mph":
		return MilesPerHour, nil
	default:
		return "", fmt.Errorf("%w: wind speed unit %q", ErrInvalidPreference, s)
	}
}

func ParseTimeFormat(s string) (TimeFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "24h", "24":
		return TimeFormat24h, nil
	case "12h", "12":
		return TimeFormat12h, nil
	default:
		return "", fmt.Errorf("%w: time format %q", ErrInvalidPreference, s)
	}
}

type Preferences struct {
	TempUnit   TempUnit
	WindUnit   WindUnit
	TimeFormat TimeFormat
	LastCity   string
}

func DefaultPreferences() Preferences {
	return Preferences{
		TempUnit:   Celsius,
		WindUnit:   KilometersPerHour,
		TimeFormat: TimeFormat24h,
	}
}

// PreferencesFromMap applies stored key/value pairs on top of the defaults.
// Unknown keys and unparsable values are ignored.
func PreferencesFromMap(kv map[string]string) Preferences {
	p := DefaultPreferences()
	if u, err := ParseTempUnit(kv[PrefTempUnit]); err == nil {
		p.TempUnit = u
	}
	if u, err := ParseWindUnit(kv[PrefWindUnit]); err == nil {
		p.WindUnit = u
	}
	if f, err := ParseTimeFormat(kv[PrefTimeFormat]); err == nil {
		p.TimeFormat = f
	}
	p.LastCity = strings.TrimSpace(kv[PrefLastCity])
	return p
}

func (p Preferences) ToMap() map[string]string {
	return map[string]string{
		PrefTempUnit:   string(p.TempUnit),
		PrefWindUnit:   string(p.WindUnit),
		PrefTimeFormat: string(p.TimeFormat),
		PrefLastCity:   p.LastCity,
	}
}
