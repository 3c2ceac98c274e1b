package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for session persistence. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveSession upserts the pending URL for a user. Last write wins.
	SaveSession(ctx context.Context, userID int64, url string) error

	// GetSession retrieves a user's session. Returns nil, nil if the
	// user has no stored URL.
	GetSession(ctx context.Context, userID int64) (*Session, error)

	// DeleteExpiredSessions removes sessions not updated within ttl and
	// returns the number of rows removed.
	DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by the provided sqlx.DB.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "database_store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *sqlxStore) SaveSession(ctx context.Context, userID int64, url string) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}
	if url == "" {
		return fmt.Errorf("url cannot be empty")
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO sessions (user_id, url, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            url = excluded.url,
            updated_at = excluded.updated_at;
    `

	_, err := s.db.ExecContext(ctx, query, userID, url, now, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving session", "user_id", userID, "error", err)
		return fmt.Errorf("failed to save session for user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Session saved", "user_id", userID)
	return nil
}

func (s *sqlxStore) GetSession(ctx context.Context, userID int64) (*Session, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var session Session
	query := `SELECT user_id, url, created_at, updated_at FROM sessions WHERE user_id = ?`

	err := s.db.GetContext(ctx, &session, query, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// No pending URL is expected for fresh users, not an error.
		s.logger.DebugContext(ctx, "No session found", "user_id", userID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching session",
			"user_id", userID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting session", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get session for user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Session retrieved", "user_id", userID)
	return &session, nil
}

func (s *sqlxStore) DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	cutoff := time.Now().UTC().Add(-ttl)
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting expired sessions", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not count removed sessions", "error", err)
		return 0, nil
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "Removed expired sessions", "count", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
