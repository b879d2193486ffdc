package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel accepts the slog level names, case insensitive, with an
// optional offset such as "INFO+2". "WARNING" is read as WARN.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if rest, ok := strings.CutPrefix(s, "WARNING"); ok {
		s = "WARN" + rest
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// LevelFromString is ParseLevel for optional config values. Missing or
// invalid values give INFO.
func LevelFromString(str *string) slog.Level {
	if str == nil {
		return slog.LevelInfo
	}
	l, err := ParseLevel(*str)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}
