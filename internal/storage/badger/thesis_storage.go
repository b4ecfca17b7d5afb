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

// ThesisStorage implements the ThesisStorage interface for Badger
type ThesisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewThesisStorage creates a new ThesisStorage instance
func NewThesisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ThesisStorage {
	return &ThesisStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ThesisStorage) SaveThesis(ctx context.Context, thesis *models.Thesis) error {
	if thesis.ID == "" {
		return fmt.Errorf("%w: thesis ID is required", models.ErrInvalidInput)
	}
	if err := thesis.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	now := time.Now()
	if thesis.CreatedAt.IsZero() {
		thesis.CreatedAt = now
	}
	thesis.UpdatedAt = now

	if err := s.db.Store().Upsert(thesis.ID, thesis); err != nil {
		return fmt.Errorf("%w: failed to save thesis %s: %v", models.ErrPersistence, thesis.ID, err)
	}
	return nil
}

func (s *ThesisStorage) GetThesis(ctx context.Context, id string) (*models.Thesis, error) {
	var thesis models.Thesis
	if err := s.db.Store().Get(id, &thesis); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: no thesis with id %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get thesis %s: %v", models.ErrPersistence, id, err)
	}
	return &thesis, nil
}

func (s *ThesisStorage) DeleteThesis(ctx context.Context, userID, id string) error {
	thesis, err := s.GetThesis(ctx, id)
	if err != nil {
		return err
	}
	if thesis.UserID != userID {
		return fmt.Errorf("%w: no thesis with id %s", models.ErrNotFound, id)
	}

	if err := s.db.Store().Delete(id, &models.Thesis{}); err != nil {
		return fmt.Errorf("%w: failed to delete thesis %s: %v", models.ErrPersistence, id, err)
	}
	return nil
}

func (s *ThesisStorage) ListTheses(ctx context.Context, userID, ticker string) ([]*models.Thesis, error) {
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID")
	if ticker != "" {
		query = query.And("Ticker").Eq(ticker)
	}

	var theses []models.Thesis
	if err := s.db.Store().Find(&theses, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list theses for user %s: %v", models.ErrPersistence, userID, err)
	}

	return sortedThesisPtrs(theses), nil
}

func (s *ThesisStorage) ListActiveByTicker(ctx context.Context, ticker string) ([]*models.Thesis, error) {
	query := badgerhold.Where("Ticker").Eq(ticker).Index("Ticker").
		And("Status").Eq(models.ThesisStatusActive)

	var theses []models.Thesis
	if err := s.db.Store().Find(&theses, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list theses for ticker %s: %v", models.ErrPersistence, ticker, err)
	}

	return sortedThesisPtrs(theses), nil
}

func (s *ThesisStorage) ListActive(ctx context.Context) ([]*models.Thesis, error) {
	query := badgerhold.Where("Status").Eq(models.ThesisStatusActive)

	var theses []models.Thesis
	if err := s.db.Store().Find(&theses, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list active theses: %v", models.ErrPersistence, err)
	}

	return sortedThesisPtrs(theses), nil
}

func sortedThesisPtrs(theses []models.Thesis) []*models.Thesis {
	sort.Slice(theses, func(i, j int) bool {
		return theses[i].CreatedAt.After(theses[j].CreatedAt)
	})
	result := make([]*models.Thesis, len(theses))
	for i := range theses {
		result[i] = &theses[i]
	}
	return result
}
