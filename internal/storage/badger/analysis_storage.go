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

// AnalysisStorage implements the AnalysisStorage interface for Badger.
// Rows are keyed by ticker; the ticker uniqueness constraint is the sole
// consistency mechanism for concurrent writers (last write wins).
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AnalysisStorage) SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	if result.Ticker == "" {
		return fmt.Errorf("%w: analysis ticker is required", models.ErrInvalidInput)
	}

	now := time.Now()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	if err := s.db.Store().Upsert(result.Ticker, result); err != nil {
		return fmt.Errorf("%w: failed to save analysis for %s: %v", models.ErrPersistence, result.Ticker, err)
	}
	return nil
}

func (s *AnalysisStorage) GetAnalysis(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := s.db.Store().Get(ticker, &result); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: no analysis for ticker %s", models.ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("%w: failed to get analysis for %s: %v", models.ErrPersistence, ticker, err)
	}
	return &result, nil
}

func (s *AnalysisStorage) DeleteAnalysis(ctx context.Context, ticker string) error {
	if err := s.db.Store().Delete(ticker, &models.AnalysisResult{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: no analysis for ticker %s", models.ErrNotFound, ticker)
		}
		return fmt.Errorf("%w: failed to delete analysis for %s: %v", models.ErrPersistence, ticker, err)
	}
	return nil
}

func (s *AnalysisStorage) ListCachedTickers(ctx context.Context) ([]models.CachedTicker, error) {
	var results []models.AnalysisResult
	if err := s.db.Store().Find(&results, nil); err != nil {
		return nil, fmt.Errorf("%w: failed to list analyses: %v", models.ErrPersistence, err)
	}

	tickers := make([]models.CachedTicker, 0, len(results))
	for _, r := range results {
		tickers = append(tickers, models.CachedTicker{Ticker: r.Ticker, UpdatedAt: r.UpdatedAt})
	}

	// Most recently updated first
	sort.Slice(tickers, func(i, j int) bool {
		return tickers[i].UpdatedAt.After(tickers[j].UpdatedAt)
	})

	return tickers, nil
}

func (s *AnalysisStorage) CountAnalyses(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.AnalysisResult{}, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count analyses: %v", models.ErrPersistence, err)
	}
	return int(count), nil
}
