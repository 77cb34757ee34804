package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"sharetome/internal/model"
	"sharetome/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmailRequired   = errors.New("identity email is required")
)

// SessionService manages the server-side sessions backing the session cookie.
type SessionService interface {
	// Create opens a session for a signed-in identity.
	Create(ctx context.Context, id model.Identity) (*model.Session, error)

	// Lookup resolves a session token. Unknown and expired tokens yield ErrSessionNotFound.
	Lookup(ctx context.Context, token string) (*model.Session, error)

	// Delete ends a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// PurgeExpired removes expired sessions and returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionService constructs a SessionService whose sessions live for ttl.
func NewSessionService(repo repository.SessionRepository, ttl time.Duration) SessionService {
	return &sessionService{repo: repo, ttl: ttl, now: time.Now}
}

func (s *sessionService) Create(ctx context.Context, id model.Identity) (*model.Session, error) {
	email := strings.TrimSpace(id.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	token, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now().UTC()
	sess := &model.Session{
		Token:     token,
		Email:     email,
		Name:      id.Name,
		Provider:  id.Provider,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	created, err := s.repo.Create(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return created, nil
}

func (s *sessionService) Lookup(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !sess.Valid(s.now()) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.Delete(ctx, token)
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
