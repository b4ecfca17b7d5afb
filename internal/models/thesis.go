package models

import (
	"errors"
	"fmt"
	"time"
)

// Kill criterion kinds. Each kind is a boolean predicate over a fresh
// analysis result; the emitter only cares whether a criterion fired.
const (
	CriterionSentiment    = "sentiment"      // overall sentiment reaches a given label
	CriterionConfidence   = "confidence"     // bearish conviction at or above a confidence floor
	CriterionPriceDropPct = "price_drop_pct" // close-to-close drop across the analysis window
)

// Thesis statuses.
const (
	ThesisStatusActive      = "active"
	ThesisStatusValidated   = "validated"
	ThesisStatusInvalidated = "invalidated"
	ThesisStatusExited      = "exited"
)

// KillCriterion is one user-defined exit condition attached to a thesis.
type KillCriterion struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description,omitempty"`
	Sentiment   string  `json:"sentiment,omitempty"`      // CriterionSentiment: label that triggers
	Confidence  float64 `json:"confidence,omitempty"`     // CriterionSentiment/CriterionConfidence: minimum confidence
	DropPct     float64 `json:"drop_pct,omitempty"`       // CriterionPriceDropPct: trigger drop, positive percent
}

// Matches reports whether the criterion fires against a fresh analysis result.
func (c KillCriterion) Matches(result *AnalysisResult) bool {
	if result == nil {
		return false
	}
	switch c.Kind {
	case CriterionSentiment:
		return result.Sentiment.OverallSentiment == c.Sentiment &&
			result.Sentiment.OverallConfidence >= c.Confidence
	case CriterionConfidence:
		return result.Sentiment.OverallSentiment == SentimentBearish &&
			result.Sentiment.OverallConfidence >= c.Confidence
	case CriterionPriceDropPct:
		if c.DropPct <= 0 {
			return false
		}
		return result.PriceChangePct() <= -c.DropPct
	default:
		return false
	}
}

// Validate checks that the criterion is well formed.
func (c KillCriterion) Validate() error {
	switch c.Kind {
	case CriterionSentiment:
		if c.Sentiment == "" {
			return errors.New("sentiment criterion requires a sentiment label")
		}
	case CriterionConfidence:
		if c.Confidence <= 0 || c.Confidence > 1 {
			return fmt.Errorf("confidence criterion requires a threshold in (0,1], got %v", c.Confidence)
		}
	case CriterionPriceDropPct:
		if c.DropPct <= 0 {
			return fmt.Errorf("price drop criterion requires a positive percentage, got %v", c.DropPct)
		}
	default:
		return fmt.Errorf("unknown criterion kind: %s", c.Kind)
	}
	return nil
}

// Thesis is a user's investment thesis for a ticker, carrying the kill
// criteria monitored against fresh analysis results.
type Thesis struct {
	ID              string          `json:"id" badgerhold:"key"`
	UserID          string          `json:"user_id" badgerhold:"index"`
	Ticker          string          `json:"ticker" badgerhold:"index"`
	Summary         string          `json:"summary"`
	ConvictionLevel string          `json:"conviction_level"` // high, medium, low
	KillCriteria    []KillCriterion `json:"kill_criteria,omitempty"`
	TimeHorizon     string          `json:"time_horizon"` // short, medium, long
	ThesisType      string          `json:"thesis_type"`  // growth, value, income, turnaround, special_situation
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Validate checks thesis invariants before storage.
func (t *Thesis) Validate() error {
	if t.UserID == "" {
		return errors.New("thesis user ID is required")
	}
	if t.Ticker == "" {
		return errors.New("thesis ticker is required")
	}
	if t.Summary == "" {
		return errors.New("thesis summary is required")
	}
	for i, c := range t.KillCriteria {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("kill criterion %d: %w", i, err)
		}
	}
	return nil
}
