// Package analysis implements the request orchestrator: get-or-compute
// semantics over the analysis store, with post-commit kill-criteria
// evaluation for freshly computed results.
package analysis

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

// hookTimeout bounds post-commit alert evaluation, which runs detached
// from the request context.
const hookTimeout = 30 * time.Second

// Service implements the AnalysisService interface.
type Service struct {
	engine          interfaces.AnalysisEngine
	analysisStorage interfaces.AnalysisStorage
	thesisStorage   interfaces.ThesisStorage
	emitter         interfaces.AlertEmitter
	logger          arbor.ILogger
}

// NewService creates the analysis orchestrator. Thesis storage and the
// emitter are optional as a pair; without them no alert evaluation runs.
func NewService(
	engine interfaces.AnalysisEngine,
	analysisStorage interfaces.AnalysisStorage,
	thesisStorage interfaces.ThesisStorage,
	emitter interfaces.AlertEmitter,
	logger arbor.ILogger,
) *Service {
	return &Service{
		engine:          engine,
		analysisStorage: analysisStorage,
		thesisStorage:   thesisStorage,
		emitter:         emitter,
		logger:          logger,
	}
}

// RequestAnalysis serves the cached row unless force is set or no row exists.
// On a fresh computation the result is upserted (best-effort: a failed write
// is logged and the computed answer still returned) and, when a principal is
// present, kill-criteria evaluation is scheduled as a post-commit hook.
//
// Concurrent forced requests for the same ticker are not coalesced; the
// store upsert applies last-write-wins by completion order.
func (s *Service) RequestAnalysis(ctx context.Context, ticker string, force bool, principal *models.Principal) (*models.AnalysisResult, error) {
	normalized, err := common.NormalizeTicker(ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	if !force {
		cached, err := s.analysisStorage.GetAnalysis(ctx, normalized)
		if err == nil {
			s.logger.Debug().
				Str("ticker", normalized).
				Msg("Analysis cache hit")
			return cached, nil
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("%w: failed to read analysis cache for %s: %v", models.ErrPersistence, normalized, err)
		}
	}

	s.logger.Info().
		Str("ticker", normalized).
		Bool("force", force).
		Msg("Invoking analysis engine")

	result, err := s.engine.Analyze(ctx, normalized)
	if err != nil {
		return nil, err
	}

	// Upsert is best-effort: the computed answer outranks cache durability
	if err := s.analysisStorage.SaveAnalysis(ctx, result); err != nil {
		s.logger.Warn().
			Err(err).
			Str("ticker", normalized).
			Msg("Failed to persist analysis result, returning uncached result")
	}

	if principal != nil {
		s.scheduleAlertEvaluation(principal, result)
	}

	return result, nil
}

// scheduleAlertEvaluation runs kill-criteria evaluation for the principal's
// active theses on this ticker. Failures are logged, never surfaced.
func (s *Service) scheduleAlertEvaluation(principal *models.Principal, fresh *models.AnalysisResult) {
	if s.thesisStorage == nil || s.emitter == nil {
		return
	}

	userID := principal.UserID
	common.SafeGo(s.logger, "evaluateAlerts", func() {
		ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()

		theses, err := s.thesisStorage.ListActiveByTicker(ctx, fresh.Ticker)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("ticker", fresh.Ticker).
				Msg("Failed to load theses for alert evaluation")
			return
		}

		for _, thesis := range theses {
			if thesis.UserID != userID {
				continue
			}
			if _, err := s.emitter.Evaluate(ctx, thesis, fresh); err != nil {
				s.logger.Warn().
					Err(err).
					Str("thesis_id", thesis.ID).
					Str("ticker", fresh.Ticker).
					Msg("Kill criteria evaluation failed")
			}
		}
	})
}

// GetCachedResult returns the cached row or models.ErrNotFound. Never computes.
func (s *Service) GetCachedResult(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	normalized, err := common.NormalizeTicker(ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return s.analysisStorage.GetAnalysis(ctx, normalized)
}

// ListCachedTickers returns cached tickers, most recently updated first.
func (s *Service) ListCachedTickers(ctx context.Context) ([]models.CachedTicker, error) {
	return s.analysisStorage.ListCachedTickers(ctx)
}

// EvictAnalysis removes the cached row for the ticker, returning the
// normalized ticker it removed.
func (s *Service) EvictAnalysis(ctx context.Context, ticker string) (string, error) {
	normalized, err := common.NormalizeTicker(ticker)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	if err := s.analysisStorage.DeleteAnalysis(ctx, normalized); err != nil {
		return "", err
	}

	s.logger.Info().
		Str("ticker", normalized).
		Msg("Analysis result evicted")

	return normalized, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
