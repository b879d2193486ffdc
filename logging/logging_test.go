package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/icodeforyou/weatherboard-go/database"
)

type memoryStore struct {
	rows []database.LogEntryRow
}

func (m *memoryStore) SaveLogEntry(_ context.Context, r database.LogEntryRow) error {
	m.rows = append(m.rows, r)
	return nil
}

func TestLevelFromString(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		in   *string
		want slog.Level
	}{
		{nil, slog.LevelInfo},
		{str("debug"), slog.LevelDebug},
		{str("WARN"), slog.LevelWarn},
		{str("Error"), slog.LevelError},
		{str("verbose"), slog.LevelInfo},
		{str("warning"), slog.LevelWarn},
		{str("info+2"), slog.LevelInfo + 2},
	}
	for _, tt := range tests {
		if got := LevelFromString(tt.in); got != tt.want {
			t.Errorf("LevelFromString(%v) = %v, wanted %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if l, err := ParseLevel(" error "); err != nil || l != slog.LevelError {
		t.Errorf("got %v, %v; wanted ERROR", l, err)
	}
}

func TestSQLiteHandlerKeepsLoggerAttrs(t *testing.T) {
	store := &memoryStore{}
	logger := slog.New(NewSQLiteHandler(store, slog.LevelInfo, LogAttrFormatText)).With("module", "dashboard")

	logger.Debug("ignored")
	logger.Info("search applied", "city", "Oslo")

	if len(store.rows) != 1 {
		t.Fatalf("got %d rows, wanted 1", len(store.rows))
	}
	if got := store.rows[0].Attrs; got != "module=dashboard; city=Oslo" {
		t.Errorf("got attrs %q", got)
	}
}

func TestSQLiteHandlerJSON(t *testing.T) {
	store := &memoryStore{}
	slog.New(NewSQLiteHandler(store, slog.LevelDebug, LogAttrFormatJSON)).Warn("slow", "ms", 1200)

	if got := store.rows[0].Attrs; got != `[{"ms":"1200"}]` {
		t.Errorf("got attrs %q", got)
	}
	if store.rows[0].Level != int(slog.LevelWarn) {
		t.Errorf("got level %d", store.rows[0].Level)
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var buf bytes.Buffer
	store := &memoryStore{}
	console := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewMultiHandler(console, NewSQLiteHandler(store, slog.LevelWarn, LogAttrFormatText)))

	logger.Debug("only console")
	logger.Error("both")

	if !strings.Contains(buf.String(), "only console") || !strings.Contains(buf.String(), "both") {
		t.Errorf("console missing records: %s", buf.String())
	}
	if len(store.rows) != 1 || store.rows[0].Message != "both" {
		t.Errorf("got %+v, wanted only the error record stored", store.rows)
	}
}
