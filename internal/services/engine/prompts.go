package engine

import (
	"fmt"
	"strings"

	"github.com/ternarybob/stocksense/internal/models"
)

// Skeptic verdict labels. The skeptic grades its agreement with the primary
// analysis rather than re-scoring the ticker.
const (
	skepticDisagree          = "Disagree"
	skepticPartialDisagree   = "Partially Disagree"
	skepticAgreeReservations = "Agree with Reservations"
	skepticAgree             = "Agree"
)

const sentimentSystemPrompt = `You are a financial sentiment analysis expert. You classify news headlines for stock market research and always respond with a single JSON object matching the requested schema. Return ONLY the JSON object, no prose and no markdown fences.`

const skepticSystemPrompt = `You are a SKEPTIC ANALYST. Your job is to challenge and critique a primary sentiment analysis. A good skeptic does not disagree for the sake of it: your critique must be substantive and evidence-based. If the primary analysis is genuinely strong, acknowledge that while still surfacing concerns. Always respond with a single JSON object matching the requested schema. Return ONLY the JSON object.`

// buildSentimentPrompt renders the Stage-1 prompt from collected headlines and
// the price window.
func buildSentimentPrompt(ticker string, result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TICKER: %s\n\n", ticker)

	b.WriteString("HEADLINES TO ANALYZE:\n")
	for i, h := range result.Headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h.Title)
	}

	if len(result.PriceData) > 0 {
		first := result.PriceData[0]
		last := result.PriceData[len(result.PriceData)-1]
		fmt.Fprintf(&b, "\nPRICE CONTEXT: close moved from %.2f (%s) to %.2f (%s), %.1f%% over the window.\n",
			first.Close, first.Date, last.Close, last.Date, result.PriceChangePct())
	}

	b.WriteString(`
For each headline classify the sentiment as "bullish", "bearish" or "neutral" with a confidence between 0.0 and 1.0 and a one-sentence reasoning. Then aggregate into an overall verdict.

Respond with a JSON object:
{
    "overall_sentiment": "bullish" | "bearish" | "neutral",
    "overall_confidence": <float 0.0-1.0>,
    "confidence_reasoning": "<why this confidence level>",
    "headline_analyses": [
        {"headline": "<text>", "sentiment": "bullish" | "bearish" | "neutral", "confidence": <float>, "reasoning": "<1-2 sentences>", "entities": ["<company or entity>"]}
    ],
    "key_themes": [
        {"theme": "<name>", "direction": "bullish" | "bearish" | "mixed" | "neutral", "headline_count": <int>, "summary": "<1 sentence>"}
    ],
    "potential_impact": "<expected impact on the stock price>",
    "risks_identified": ["<risk>"],
    "information_gaps": ["<what is missing>"]
}`)

	return b.String()
}

// buildSkepticPrompt renders the Stage-2 prompt from the Stage-1 verdict.
func buildSkepticPrompt(ticker string, result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TICKER: %s\n\n", ticker)

	b.WriteString("HEADLINES ANALYZED:\n")
	for _, h := range result.Headlines {
		fmt.Fprintf(&b, "- %s\n", h.Title)
	}

	sentiment := result.Sentiment
	b.WriteString("\nPRIMARY ANALYSIS CONCLUSION:\n")
	fmt.Fprintf(&b, "- Overall Sentiment: %s\n", sentiment.OverallSentiment)
	fmt.Fprintf(&b, "- Confidence: %.0f%%\n", sentiment.OverallConfidence*100)
	fmt.Fprintf(&b, "- Potential Impact: %s\n", orNone(sentiment.PotentialImpact))
	fmt.Fprintf(&b, "- Key Themes: %s\n", joinThemes(sentiment.KeyThemes))
	fmt.Fprintf(&b, "- Risks Identified: %s\n", orNone(strings.Join(sentiment.RisksIdentified, ", ")))

	b.WriteString(`
YOUR MANDATE:
1. CHALLENGE the conclusions - find weaknesses in the reasoning
2. SURFACE bear cases - even if the analysis is bullish, find the bear case
3. IDENTIFY hidden risks - what dangers are not being adequately considered?
4. QUESTION assumptions - what must be true for this analysis to be correct?
5. BE SPECIFIC - don't just say "could be wrong", explain WHY and HOW

Respond with a JSON object:
{
    "sentiment": "Disagree" | "Partially Disagree" | "Agree with Reservations" | "Agree",
    "confidence": <float 0.0-1.0>,
    "primary_disagreement": "<your main point of contention with the analysis>",
    "critiques": [
        {"critique": "<specific critique>", "assumption_challenged": "<what assumption this challenges>", "evidence": "<evidence or reasoning>"}
    ],
    "bear_cases": [
        {"argument": "<bear case argument>", "trigger": "<what would validate this>", "severity": "High" | "Medium" | "Low"}
    ],
    "hidden_risks": ["<risks not adequately surfaced>"],
    "would_change_mind": ["<evidence that would make you more bullish>"]
}`)

	return b.String()
}

func joinThemes(themes []models.KeyTheme) string {
	if len(themes) == 0 {
		return "None identified"
	}
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.Theme)
	}
	return strings.Join(names, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "None identified"
	}
	return s
}

// buildSummary synthesizes the one-paragraph executive summary.
func buildSummary(result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s analysis: overall sentiment is %s with %.0f%% confidence across %d headlines.",
		result.Ticker, result.Sentiment.OverallSentiment, result.Sentiment.OverallConfidence*100, len(result.Headlines))

	if len(result.PriceData) >= 2 {
		fmt.Fprintf(&b, " The price moved %.1f%% over the analysis window.", result.PriceChangePct())
	}

	if result.Sentiment.PotentialImpact != "" {
		fmt.Fprintf(&b, " Expected impact: %s.", result.Sentiment.PotentialImpact)
	}

	if result.Skeptic.PrimaryDisagreement != "" {
		fmt.Fprintf(&b, " Skeptic (%s): %s", result.Skeptic.Sentiment, result.Skeptic.PrimaryDisagreement)
	}

	return b.String()
}

// buildSentimentReport renders the full markdown report stored alongside the
// structured verdicts.
func buildSentimentReport(result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Sentiment Analysis: %s\n\n", result.Ticker)
	fmt.Fprintf(&b, "**Verdict:** %s (%.0f%% confidence)\n\n", result.Sentiment.OverallSentiment, result.Sentiment.OverallConfidence*100)
	if result.Sentiment.ConfidenceReasoning != "" {
		fmt.Fprintf(&b, "%s\n\n", result.Sentiment.ConfidenceReasoning)
	}

	if len(result.Sentiment.HeadlineAnalyses) > 0 {
		b.WriteString("### Headlines\n")
		for _, h := range result.Sentiment.HeadlineAnalyses {
			fmt.Fprintf(&b, "- **%s** (%s, %.0f%%): %s\n", h.Headline, h.Sentiment, h.Confidence*100, h.Reasoning)
		}
		b.WriteString("\n")
	}

	if len(result.Sentiment.KeyThemes) > 0 {
		b.WriteString("### Key Themes\n")
		for _, t := range result.Sentiment.KeyThemes {
			fmt.Fprintf(&b, "- **%s** (%s, %d headlines): %s\n", t.Theme, t.Direction, t.HeadlineCount, t.Summary)
		}
		b.WriteString("\n")
	}

	if len(result.Sentiment.RisksIdentified) > 0 {
		b.WriteString("### Risks\n")
		for _, r := range result.Sentiment.RisksIdentified {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Skeptic's Perspective\n")
	fmt.Fprintf(&b, "**Verdict:** %s (%.0f%% confidence)\n\n", result.Skeptic.Sentiment, result.Skeptic.Confidence*100)
	if result.Skeptic.PrimaryDisagreement != "" {
		fmt.Fprintf(&b, "**Primary Disagreement:** %s\n\n", result.Skeptic.PrimaryDisagreement)
	}

	if len(result.Skeptic.Critiques) > 0 {
		b.WriteString("### Critiques\n")
		for _, c := range result.Skeptic.Critiques {
			fmt.Fprintf(&b, "- **%s**\n  - Challenges: %s\n  - Evidence: %s\n", c.Critique, c.AssumptionChallenged, c.Evidence)
		}
		b.WriteString("\n")
	}

	if len(result.Skeptic.BearCases) > 0 {
		b.WriteString("### Bear Cases to Consider\n")
		for _, bc := range result.Skeptic.BearCases {
			fmt.Fprintf(&b, "- **%s** (%s)\n  - Trigger: %s\n", bc.Argument, bc.Severity, bc.Trigger)
		}
		b.WriteString("\n")
	}

	if len(result.Skeptic.HiddenRisks) > 0 {
		b.WriteString("### Hidden Risks\n")
		for _, r := range result.Skeptic.HiddenRisks {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	if len(result.Skeptic.WouldChangeMind) > 0 {
		b.WriteString("### What Would Change Our Mind\n")
		for _, w := range result.Skeptic.WouldChangeMind {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
