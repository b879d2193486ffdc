package database

import (
	"context"
	"fmt"
)

// GetPreferences returns every stored key/value for a client. Unknown
// clients get an empty map.
func (d *Database) GetPreferences(ctx context.Context, clientID string) (map[string]string, error) {
	rows, err := d.read.QueryContext(ctx, `
		SELECT key, value
		FROM preference
		WHERE client_id = ?`,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("fetching preferences for %s: %w", clientID, err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning preference row: %w", err)
		}
		prefs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading preference rows: %w", err)
	}

	return prefs, nil
}

func (d *Database) SavePreference(ctx context.Context, clientID string, key string, value string) error {
	d.logger.Debug("saving preference", "client", clientID, "key", key, "value", value)

	_, err := d.write.ExecContext(ctx, `
		INSERT INTO preference (client_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(client_id, key) DO UPDATE SET
			value = excluded.value`,
		clientID, key, value)
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}

	return nil
}
