package repository

import (
	"context"
	"time"

	"sharetome/internal/model"
)

// SessionRepository defines data access for sessions using SQL queries only.
// No business logic here, strictly persistence operations.
type SessionRepository interface {
	// Create inserts a new session record and returns it as stored.
	Create(ctx context.Context, sess *model.Session) (*model.Session, error)

	// FindByToken returns a session by its token. Expired sessions are returned as well;
	// deciding validity is up to the caller.
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// Delete removes a session by token. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every session that expired before now and reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
