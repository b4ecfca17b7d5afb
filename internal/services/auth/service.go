// Package auth resolves opaque bearer tokens to principals via the stored
// session mapping.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// defaultSessionTTL bounds session lifetime when no expiry is configured.
const defaultSessionTTL = 30 * 24 * time.Hour

// Service implements the AuthService interface over session storage.
type Service struct {
	sessions interfaces.SessionStorage
	logger   arbor.ILogger
	ttl      time.Duration
}

// NewService creates a session-backed auth service.
func NewService(sessions interfaces.SessionStorage, logger arbor.ILogger) *Service {
	return &Service{
		sessions: sessions,
		logger:   logger,
		ttl:      defaultSessionTTL,
	}
}

// VerifyToken resolves a bearer token to its principal. Unknown and expired
// tokens both map to ErrUnauthorized; expired sessions are removed.
func (s *Service) VerifyToken(ctx context.Context, token string) (*models.Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty bearer token", models.ErrUnauthorized)
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown token", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(time.Now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to remove expired session")
		}
		return nil, fmt.Errorf("%w: session expired", models.ErrUnauthorized)
	}

	return &models.Principal{UserID: session.UserID, Email: session.Email}, nil
}

// CreateSession registers a session for a principal and returns it with a
// freshly generated token.
func (s *Service) CreateSession(ctx context.Context, userID, email string) (*models.Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", models.ErrInvalidInput)
	}

	now := time.Now()
	session := &models.Session{
		Token:     common.NewSessionToken(),
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("expires_at", session.ExpiresAt.Format(time.RFC3339)).
		Msg("Session created")

	return session, nil
}

// RevokeSession invalidates a token. Revoking an unknown token is a no-op.
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
