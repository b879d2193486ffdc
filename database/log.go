package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type LogEntryRow struct {
	Timestamp time.Time
	Level     int
	Message   string
	Attrs     string
}

// LogQuery selects a page of log entries, newest first. Page is 1 based.
type LogQuery struct {
	MinLevel slog.Level
	Contains string // case insensitive match on message or attributes
	Page     int
	PageSize int
}

func (d *Database) SaveLogEntry(ctx context.Context, r LogEntryRow) error {
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO log (timestamp, level, message, attrs)
		VALUES (?, ?, ?, ?)`,
		r.Timestamp.UnixMilli(), r.Level, r.Message, r.Attrs)
	if err != nil {
		return fmt.Errorf("saving log entry: %w", err)
	}
	return nil
}

func (d *Database) GetLogEntries(ctx context.Context, q LogQuery) ([]LogEntryRow, error) {
	page := max(q.Page, 1)
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	where := "level >= ?"
	args := []any{int(q.MinLevel)}
	if s := strings.TrimSpace(q.Contains); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		where += " AND (lower(message) LIKE ? OR lower(attrs) LIKE ?)"
		args = append(args, like, like)
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := d.read.QueryContext(ctx, fmt.Sprintf(`
		SELECT timestamp, level, message, attrs
		FROM log
		WHERE %s
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("fetching log entries: %w", err)
	}
	defer rows.Close()

	var entries []LogEntryRow
	for rows.Next() {
		var r LogEntryRow
		var millis int64
		if err := rows.Scan(&millis, &r.Level, &r.Message, &r.Attrs); err != nil {
			return nil, fmt.Errorf("scanning log row: %w", err)
		}
		r.Timestamp = time.UnixMilli(millis)
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading log rows: %w", err)
	}

	return entries, nil
}

// PurgeLog keeps the newest maxLogEntries rows.
func (d *Database) PurgeLog(ctx context.Context, maxLogEntries int) error {
	res, err := d.write.ExecContext(ctx, `
		DELETE FROM log
		WHERE id <= (SELECT id FROM log ORDER BY id DESC LIMIT 1 OFFSET ?)`,
		maxLogEntries)
	if err != nil {
		return fmt.Errorf("purging log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.logger.Debug("purged log", slog.Int64("rows", n), slog.Int("kept", maxLogEntries))
	}
	return nil
}
