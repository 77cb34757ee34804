package postgres

import (
	"context"
	"database/sql"
	"time"

	"sharetome/internal/model"
	"sharetome/internal/repository"
)

// SessionPostgres is a PostgreSQL implementation of repository.SessionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type SessionPostgres struct {
	db *sql.DB
}

// NewSessionPostgres creates a new SessionPostgres repository.
func NewSessionPostgres(db *sql.DB) *SessionPostgres {
	return &SessionPostgres{db: db}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// Create inserts a new session row and returns the stored record.
func (r *SessionPostgres) Create(ctx context.Context, sess *model.Session) (*model.Session, error) {
	const q = `
		INSERT INTO sessions (token, email, name, provider, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING token, email, name, provider, created_at, expires_at
	`
	row := r.db.QueryRowContext(ctx, q,
		sess.Token,
		sess.Email,
		sess.Name,
		sess.Provider,
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	var out model.Session
	if err := scanSession(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByToken fetches a single session by its token.
// sql.ErrNoRows is returned unchanged when no session matches.
func (r *SessionPostgres) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	const q = `
		SELECT token, email, name, provider, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`
	var s model.Session
	if err := scanSession(r.db.QueryRowContext(ctx, q, token), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session by token. It does not return an error if the row does not exist.
func (r *SessionPostgres) Delete(ctx context.Context, token string) error {
	const q = `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, q, token)
	return err
}

// DeleteExpired removes sessions whose expiry is before now.
func (r *SessionPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSession(row *sql.Row, s *model.Session) error {
	return row.Scan(
		&s.Token,
		&s.Email,
		&s.Name,
		&s.Provider,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
}
