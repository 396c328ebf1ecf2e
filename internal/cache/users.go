package cache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/fragmede/panelist/internal/api"
)

// GetUser retrieves a cached user profile. Returns (user, isFresh, error);
// the user is nil on a cache miss.
func (d *DB) GetUser(username string, ttl time.Duration) (*api.UserBrief, bool, error) {
	row := d.db.QueryRow(`SELECT username, id, email, fetched_at FROM users WHERE username = ?`, username)

	var user api.UserBrief
	var email sql.NullString
	var fetchedAt int64

	err := row.Scan(&user.Username, &user.ID, &email, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	user.Email = email.String
	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return &user, isFresh, nil
}

// PutUser stores a user profile in the cache.
func (d *DB) PutUser(user *api.UserBrief) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO users (username, id, email, fetched_at) VALUES (?, ?, ?, ?)`,
		user.Username, user.ID, nullStr(user.Email), time.Now().Unix())
	return err
}

// DeleteUser drops a cached profile.
func (d *DB) DeleteUser(username string) error {
	_, err := d.db.Exec(`DELETE FROM users WHERE username = ?`, username)
	return err
}
