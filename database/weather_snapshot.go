package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	SnapshotConditions = "conditions"
	SnapshotForecast   = "forecast"
)

type WeatherSnapshotRow struct {
	City    string
	Kind    string
	Data    []byte
	Fetched time.Time
}

func (r WeatherSnapshotRow) IsZero() bool {
	return r.City == ""
}

func (d *Database) SaveWeatherSnapshot(ctx context.Context, row WeatherSnapshotRow) error {
	d.logger.Debug("saving weather snapshot", "city", row.City, "kind", row.Kind)

	_, err := d.write.ExecContext(ctx, `
		INSERT INTO weather_snapshot (city, kind, data, fetched)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(city, kind) DO UPDATE SET
			data = excluded.data,
			fetched = excluded.fetched`,
		row.City,
		row.Kind,
		string(row.Data),
		row.Fetched.Unix())
	if err != nil {
		return fmt.Errorf("saving weather snapshot for %s: %w", row.City, err)
	}

	return nil
}

// GetWeatherSnapshot returns a zero row when nothing is stored.
func (d *Database) GetWeatherSnapshot(ctx context.Context, city string, kind string) (WeatherSnapshotRow, error) {
	row := d.read.QueryRowContext(ctx, `
		SELECT city, kind, data, fetched
		FROM weather_snapshot
		WHERE city = ? AND kind = ?`,
		city, kind)

	var data string
	var fetched int64
	var ws WeatherSnapshotRow
	err := row.Scan(&ws.City, &ws.Kind, &data, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return WeatherSnapshotRow{}, nil
	}
	if err != nil {
		return WeatherSnapshotRow{}, fmt.Errorf("fetching weather snapshot for %s: %w", city, err)
	}
	ws.Data = []byte(data)
	ws.Fetched = time.Unix(fetched, 0)

	return ws, nil
}

func (d *Database) PurgeWeatherSnapshots(ctx context.Context, retentionDays int) error {
	return d.purgeTable(ctx, "weather_snapshot", "fetched", retentionDays)
}
