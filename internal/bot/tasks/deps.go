// Package tasks implements the scheduled background tasks of the bots:
// expired-session cleanup and database maintenance.
package tasks

import (
	"log/slog"

	"github.com/nsmelov/tgbots/internal/config"
	"github.com/nsmelov/tgbots/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
