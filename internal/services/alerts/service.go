// Package alerts evaluates thesis kill criteria against fresh analysis
// results and emits deduplicated alert events.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// Service implements the AlertEmitter interface.
type Service struct {
	alertStorage interfaces.AlertStorage
	events       interfaces.EventService
	logger       arbor.ILogger
}

// NewService creates a new alert emitter. The event service is optional;
// when nil, emitted alerts are persisted but not pushed.
func NewService(alertStorage interfaces.AlertStorage, events interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		alertStorage: alertStorage,
		events:       events,
		logger:       logger,
	}
}

// Evaluate checks every kill criterion of the thesis against the fresh
// result. At most one alert is emitted per evaluation, covering all fired
// criteria. An existing unread alert for the same (user, thesis, ticker,
// type) suppresses emission.
func (s *Service) Evaluate(ctx context.Context, thesis *models.Thesis, fresh *models.AnalysisResult) (*models.AlertEvent, error) {
	if thesis == nil || fresh == nil {
		return nil, nil
	}
	if thesis.Status != models.ThesisStatusActive {
		return nil, nil
	}

	var fired []models.KillCriterion
	for _, criterion := range thesis.KillCriteria {
		if criterion.Matches(fresh) {
			fired = append(fired, criterion)
		}
	}
	if len(fired) == 0 {
		return nil, nil
	}

	// Dedup: one unread alert per (user, thesis, ticker, type) at a time
	hasUnread, err := s.alertStorage.HasUnreadAlert(ctx, thesis.UserID, thesis.ID, thesis.Ticker, models.AlertTypeKillCriteria)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing unread alert: %w", err)
	}
	if hasUnread {
		s.logger.Debug().
			Str("thesis_id", thesis.ID).
			Str("ticker", thesis.Ticker).
			Msg("Skipping alert, unread alert already pending")
		return nil, nil
	}

	alert := buildAlert(thesis, fresh, fired)

	if err := s.alertStorage.AppendAlert(ctx, alert); err != nil {
		// Persistence failures must not break the analysis request path
		s.logger.Warn().
			Err(err).
			Str("thesis_id", thesis.ID).
			Str("ticker", thesis.Ticker).
			Msg("Failed to persist alert")
		return nil, nil
	}

	s.logger.Info().
		Str("alert_id", alert.ID).
		Str("thesis_id", thesis.ID).
		Str("ticker", thesis.Ticker).
		Int("criteria_fired", len(fired)).
		Msg("Kill criteria alert emitted")

	if s.events != nil {
		s.events.PublishAlert(alert)
	}

	return alert, nil
}

func buildAlert(thesis *models.Thesis, fresh *models.AnalysisResult, fired []models.KillCriterion) *models.AlertEvent {
	descriptions := make([]string, 0, len(fired))
	for _, criterion := range fired {
		descriptions = append(descriptions, describeCriterion(criterion, fresh))
	}

	return &models.AlertEvent{
		ID:        common.NewAlertID(),
		UserID:    thesis.UserID,
		ThesisID:  thesis.ID,
		Ticker:    thesis.Ticker,
		AlertType: models.AlertTypeKillCriteria,
		Message:   "Kill Criteria Triggered: " + strings.Join(descriptions, "; "),
		Context: map[string]interface{}{
			"triggered_criteria": descriptions,
			"sentiment":          fresh.Sentiment.OverallSentiment,
			"confidence":         fresh.Sentiment.OverallConfidence,
			"ticker":             fresh.Ticker,
		},
		CreatedAt: time.Now(),
	}
}

// describeCriterion renders a human-readable line for a fired criterion,
// falling back to the user's description when present.
func describeCriterion(criterion models.KillCriterion, fresh *models.AnalysisResult) string {
	if criterion.Description != "" {
		return criterion.Description
	}
	switch criterion.Kind {
	case models.CriterionSentiment:
		return fmt.Sprintf("sentiment reached %s at %.0f%% confidence",
			fresh.Sentiment.OverallSentiment, fresh.Sentiment.OverallConfidence*100)
	case models.CriterionConfidence:
		return fmt.Sprintf("bearish conviction at %.0f%% confidence (threshold %.0f%%)",
			fresh.Sentiment.OverallConfidence*100, criterion.Confidence*100)
	case models.CriterionPriceDropPct:
		return fmt.Sprintf("price dropped %.1f%% over the analysis window (threshold %.1f%%)",
			-fresh.PriceChangePct(), criterion.DropPct)
	default:
		return criterion.Kind
	}
}
