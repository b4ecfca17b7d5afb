package models

import (
	"encoding/json"
	"time"
)

// Sentiment labels produced by the analysis stages.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// PricePoint is a single daily OHLCV observation used as analysis input.
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Headline is a news headline collected for a ticker.
type Headline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// HeadlineSentiment is the Stage-1 classification of a single headline.
type HeadlineSentiment struct {
	Headline   string   `json:"headline"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Entities   []string `json:"entities,omitempty"`
}

// KeyTheme is a recurring theme identified across headlines.
type KeyTheme struct {
	Theme         string `json:"theme"`
	Direction     string `json:"direction"`
	HeadlineCount int    `json:"headline_count"`
	Summary       string `json:"summary"`
}

// SentimentVerdict is the structured Stage-1 output of the analysis engine.
type SentimentVerdict struct {
	OverallSentiment    string              `json:"overall_sentiment"` // bullish, bearish, neutral
	OverallConfidence   float64             `json:"overall_confidence"`
	ConfidenceReasoning string              `json:"confidence_reasoning"`
	HeadlineAnalyses    []HeadlineSentiment `json:"headline_analyses"`
	KeyThemes           []KeyTheme          `json:"key_themes,omitempty"`
	PotentialImpact     string              `json:"potential_impact"`
	RisksIdentified     []string            `json:"risks_identified,omitempty"`
	InformationGaps     []string            `json:"information_gaps,omitempty"`
}

// Critique is a specific skeptic objection to the Stage-1 analysis.
type Critique struct {
	Critique            string `json:"critique"`
	AssumptionChallenged string `json:"assumption_challenged"`
	Evidence            string `json:"evidence"`
}

// BearCase is a downside scenario surfaced by the skeptic stage.
type BearCase struct {
	Argument string `json:"argument"`
	Trigger  string `json:"trigger"`
	Severity string `json:"severity"` // High, Medium, Low
}

// SkepticVerdict is the structured Stage-2 output that critiques the Stage-1 verdict.
type SkepticVerdict struct {
	Sentiment           string     `json:"sentiment"`
	Confidence          float64    `json:"confidence"`
	PrimaryDisagreement string     `json:"primary_disagreement"`
	Critiques           []Critique `json:"critiques,omitempty"`
	BearCases           []BearCase `json:"bear_cases,omitempty"`
	HiddenRisks         []string   `json:"hidden_risks,omitempty"`
	WouldChangeMind     []string   `json:"would_change_mind,omitempty"`
}

// AnalysisResult is the cached output of one full multi-stage analysis run.
// The analysis store holds at most one row per ticker; writes are upserts.
type AnalysisResult struct {
	Ticker          string           `json:"ticker" badgerhold:"key"`
	Summary         string           `json:"summary"`
	SentimentReport string           `json:"sentiment_report"`
	PriceData       []PricePoint     `json:"price_data,omitempty"`
	Headlines       []Headline       `json:"headlines,omitempty"`
	ReasoningSteps  []string         `json:"reasoning_steps,omitempty"`
	ToolsUsed       []string         `json:"tools_used,omitempty"`
	Iterations      int              `json:"iterations"`
	Sentiment       SentimentVerdict `json:"sentiment"`
	Skeptic         SkepticVerdict   `json:"skeptic"`
	FundamentalData json.RawMessage  `json:"fundamental_data,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// LatestClose returns the most recent closing price from PriceData,
// or false when no price data was collected.
func (r *AnalysisResult) LatestClose() (float64, bool) {
	if len(r.PriceData) == 0 {
		return 0, false
	}
	return r.PriceData[len(r.PriceData)-1].Close, true
}

// PriceChangePct returns the percentage change from the first to the last
// collected close. Zero when fewer than two points exist.
func (r *AnalysisResult) PriceChangePct() float64 {
	if len(r.PriceData) < 2 {
		return 0
	}
	first := r.PriceData[0].Close
	last := r.PriceData[len(r.PriceData)-1].Close
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// CachedTicker is a listing entry for the analysis store: which tickers are
// cached and when each was last written. Derived, never persisted separately.
type CachedTicker struct {
	Ticker    string    `json:"ticker"`
	UpdatedAt time.Time `json:"updated_at"`
}
