package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/stocksense/internal/models"
)

// stripCodeFence removes a surrounding markdown code fence from an LLM
// completion. Providers often wrap JSON in ```json fences despite
// instructions not to.
func stripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// parseSentimentVerdict decodes and validates the Stage-1 completion.
func parseSentimentVerdict(completion string) (*models.SentimentVerdict, error) {
	var verdict models.SentimentVerdict
	if err := json.Unmarshal([]byte(stripCodeFence(completion)), &verdict); err != nil {
		return nil, fmt.Errorf("invalid sentiment JSON: %w", err)
	}

	verdict.OverallSentiment = normalizeSentimentLabel(verdict.OverallSentiment)
	if verdict.OverallSentiment == "" {
		return nil, fmt.Errorf("missing or unrecognized overall_sentiment")
	}
	verdict.OverallConfidence = clampConfidence(verdict.OverallConfidence)

	for i := range verdict.HeadlineAnalyses {
		verdict.HeadlineAnalyses[i].Sentiment = normalizeSentimentLabel(verdict.HeadlineAnalyses[i].Sentiment)
		verdict.HeadlineAnalyses[i].Confidence = clampConfidence(verdict.HeadlineAnalyses[i].Confidence)
	}

	return &verdict, nil
}

// parseSkepticVerdict decodes and validates the Stage-2 completion.
func parseSkepticVerdict(completion string) (*models.SkepticVerdict, error) {
	var verdict models.SkepticVerdict
	if err := json.Unmarshal([]byte(stripCodeFence(completion)), &verdict); err != nil {
		return nil, fmt.Errorf("invalid skeptic JSON: %w", err)
	}

	switch verdict.Sentiment {
	case skepticDisagree, skepticPartialDisagree, skepticAgreeReservations, skepticAgree:
	case "":
		verdict.Sentiment = skepticAgreeReservations
	default:
		return nil, fmt.Errorf("unrecognized skeptic sentiment %q", verdict.Sentiment)
	}
	verdict.Confidence = clampConfidence(verdict.Confidence)

	return &verdict, nil
}

// normalizeSentimentLabel maps provider label variants onto the canonical
// lowercase labels. Unknown labels map to empty.
func normalizeSentimentLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bullish", "positive":
		return models.SentimentBullish
	case "bearish", "negative":
		return models.SentimentBearish
	case "neutral", "mixed", "insufficient data":
		return models.SentimentNeutral
	default:
		return ""
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
