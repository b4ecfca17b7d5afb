package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *models.Session) error {
	if session.Token == "" {
		return fmt.Errorf("%w: session token is required", models.ErrInvalidInput)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(session.Token, session); err != nil {
		return fmt.Errorf("%w: failed to save session: %v", models.ErrPersistence, err)
	}
	return nil
}

func (s *SessionStorage) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Store().Get(token, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: unknown session token", models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get session: %v", models.ErrPersistence, err)
	}
	return &session, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, token string) error {
	if err := s.db.Store().Delete(token, &models.Session{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("%w: failed to delete session: %v", models.ErrPersistence, err)
	}
	return nil
}
