package database

import "time"

// Session stores the most recently submitted URL for one user, pending
// a format choice. New submissions overwrite the previous one; the
// scheduled cleanup task removes entries older than the configured TTL.
type Session struct {
	UserID    int64     `db:"user_id"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
