package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AlertStorage implements the AlertStorage interface for Badger. The log is
// append-only: rows are never rewritten except for the IsRead flag.
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStorage {
	return &AlertStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AlertStorage) AppendAlert(ctx context.Context, alert *models.AlertEvent) error {
	if alert.ID == "" {
		return fmt.Errorf("%w: alert ID is required", models.ErrInvalidInput)
	}
	if alert.UserID == "" {
		return fmt.Errorf("%w: alert user ID is required", models.ErrInvalidInput)
	}

	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(alert.ID, alert); err != nil {
		return fmt.Errorf("%w: failed to append alert %s: %v", models.ErrPersistence, alert.ID, err)
	}
	return nil
}

func (s *AlertStorage) GetAlert(ctx context.Context, id string) (*models.AlertEvent, error) {
	var alert models.AlertEvent
	if err := s.db.Store().Get(id, &alert); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: no alert with id %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get alert %s: %v", models.ErrPersistence, id, err)
	}
	return &alert, nil
}

func (s *AlertStorage) ListAlerts(ctx context.Context, userID string, unreadOnly bool) ([]*models.AlertEvent, error) {
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID")
	if unreadOnly {
		query = query.And("IsRead").Eq(false)
	}

	var alerts []models.AlertEvent
	if err := s.db.Store().Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list alerts for user %s: %v", models.ErrPersistence, userID, err)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})

	result := make([]*models.AlertEvent, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	return result, nil
}

func (s *AlertStorage) HasUnreadAlert(ctx context.Context, userID, thesisID, ticker, alertType string) (bool, error) {
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").
		And("ThesisID").Eq(thesisID).
		And("Ticker").Eq(ticker).
		And("AlertType").Eq(alertType).
		And("IsRead").Eq(false)

	count, err := s.db.Store().Count(&models.AlertEvent{}, query)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check unread alerts: %v", models.ErrPersistence, err)
	}
	return count > 0, nil
}

func (s *AlertStorage) MarkRead(ctx context.Context, userID, alertID string) error {
	alert, err := s.GetAlert(ctx, alertID)
	if err != nil {
		return err
	}

	// Ownership is exclusive to the creating user; others see not-found.
	if alert.UserID != userID {
		return fmt.Errorf("%w: no alert with id %s", models.ErrNotFound, alertID)
	}

	if alert.IsRead {
		return nil
	}

	alert.IsRead = true
	if err := s.db.Store().Update(alertID, alert); err != nil {
		return fmt.Errorf("%w: failed to mark alert %s read: %v", models.ErrPersistence, alertID, err)
	}
	return nil
}
