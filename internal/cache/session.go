package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetSession returns the session value stored under key.
func (d *DB) GetSession(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading session %q: %w", key, err)
	}
	return value, nil
}

// PutSession stores value under key, replacing any previous value.
func (d *DB) PutSession(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO session (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing session %q: %w", key, err)
	}
	return nil
}

// DeleteSession removes key. Deleting a missing key is not an error.
func (d *DB) DeleteSession(key string) error {
	if _, err := d.db.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting session %q: %w", key, err)
	}
	return nil
}
