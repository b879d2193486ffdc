package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type SearchHistoryRow struct {
	City         string
	Label        string
	Searches     int
	LastSearched time.Time
}

// RecordSearch counts a successful search. City names are stored case
// folded so "london" and "London" share a row; label keeps the last
// spelling shown to the user.
func (d *Database) RecordSearch(ctx context.Context, label string, when time.Time) error {
	city := strings.ToLower(strings.TrimSpace(label))
	if city == "" {
		return nil
	}

	_, err := d.write.ExecContext(ctx, `
		INSERT INTO search_history (city, label, searches, last_searched)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(city) DO UPDATE SET
			label = excluded.label,
			searches = searches + 1,
			last_searched = excluded.last_searched`,
		city, strings.TrimSpace(label), when.Unix())
	if err != nil {
		return fmt.Errorf("recording search for %s: %w", label, err)
	}

	return nil
}

// GetRecentSearches returns at most limit rows, most recent first.
func (d *Database) GetRecentSearches(ctx context.Context, limit int) ([]SearchHistoryRow, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT city, label, searches, last_searched
		FROM search_history
		ORDER BY last_searched DESC, searches DESC
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent searches: %w", err)
	}
	defer rows.Close()

	var history []SearchHistoryRow
	for rows.Next() {
		var r SearchHistoryRow
		var last int64
		if err := rows.Scan(&r.City, &r.Label, &r.Searches, &last); err != nil {
			return nil, fmt.Errorf("scanning search history row: %w", err)
		}
		r.LastSearched = time.Unix(last, 0)
		history = append(history, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search history rows: %w", err)
	}

	return history, nil
}

func (d *Database) PurgeSearchHistory(ctx context.Context, retentionDays int) error {
	return d.purgeTable(ctx, "search_history", "last_searched", retentionDays)
}
