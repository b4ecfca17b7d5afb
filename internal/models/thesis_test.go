package models

import "testing"

func bearishResult(confidence float64, closes ...float64) *AnalysisResult {
	r := &AnalysisResult{
		Ticker: "TSLA",
		Sentiment: SentimentVerdict{
			OverallSentiment:  SentimentBearish,
			OverallConfidence: confidence,
		},
	}
	for i, c := range closes {
		r.PriceData = append(r.PriceData, PricePoint{Date: "2026-01-0" + string(rune('1'+i)), Close: c})
	}
	return r
}

func TestKillCriterionSentiment(t *testing.T) {
	c := KillCriterion{Kind: CriterionSentiment, Sentiment: SentimentBearish, Confidence: 0.7}

	if !c.Matches(bearishResult(0.7)) {
		t.Error("expected match at confidence boundary")
	}
	if c.Matches(bearishResult(0.69)) {
		t.Error("expected no match below confidence floor")
	}

	bullish := bearishResult(0.9)
	bullish.Sentiment.OverallSentiment = SentimentBullish
	if c.Matches(bullish) {
		t.Error("expected no match for different sentiment label")
	}
}

func TestKillCriterionConfidence(t *testing.T) {
	c := KillCriterion{Kind: CriterionConfidence, Confidence: 0.8}

	if !c.Matches(bearishResult(0.85)) {
		t.Error("expected match for high-conviction bearish result")
	}

	neutral := bearishResult(0.85)
	neutral.Sentiment.OverallSentiment = SentimentNeutral
	if c.Matches(neutral) {
		t.Error("confidence criterion should only fire on bearish results")
	}
}

func TestKillCriterionPriceDrop(t *testing.T) {
	c := KillCriterion{Kind: CriterionPriceDropPct, DropPct: 10}

	if !c.Matches(bearishResult(0.5, 100, 89)) {
		t.Error("expected match for 11% drop")
	}
	if c.Matches(bearishResult(0.5, 100, 95)) {
		t.Error("expected no match for 5% drop")
	}
	if c.Matches(bearishResult(0.5, 100)) {
		t.Error("expected no match with a single price point")
	}
}

func TestKillCriterionUnknownKind(t *testing.T) {
	c := KillCriterion{Kind: "volume_spike"}
	if c.Matches(bearishResult(0.9)) {
		t.Error("unknown criterion kinds must never fire")
	}
	if err := c.Validate(); err == nil {
		t.Error("expected validation error for unknown kind")
	}
}

func TestThesisValidate(t *testing.T) {
	thesis := &Thesis{
		UserID:  "user-1",
		Ticker:  "TSLA",
		Summary: "Long-term FSD optionality",
		KillCriteria: []KillCriterion{
			{Kind: CriterionSentiment, Sentiment: SentimentBearish, Confidence: 0.8},
		},
	}
	if err := thesis.Validate(); err != nil {
		t.Fatalf("Validate() returned %v, want nil", err)
	}

	thesis.KillCriteria = append(thesis.KillCriteria, KillCriterion{Kind: CriterionPriceDropPct})
	if err := thesis.Validate(); err == nil {
		t.Error("expected validation error for zero drop percentage")
	}
}
