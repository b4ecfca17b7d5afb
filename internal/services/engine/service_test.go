package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/marketdata"
	"github.com/ternarybob/stocksense/internal/models"
)

type fakeMarketData struct {
	eod     marketdata.EODResponse
	eodErr  error
	news    marketdata.NewsResponse
	newsErr error
}

func (f *fakeMarketData) GetEOD(ctx context.Context, symbol string, opts ...marketdata.QueryOption) (marketdata.EODResponse, error) {
	return f.eod, f.eodErr
}

func (f *fakeMarketData) GetNews(ctx context.Context, symbol string, opts ...marketdata.QueryOption) (marketdata.NewsResponse, error) {
	return f.news, f.newsErr
}

func (f *fakeMarketData) GetFundamentals(ctx context.Context, symbol string) (json.RawMessage, error) {
	return json.RawMessage(`{"General":{"Code":"TSLA"}}`), nil
}

// fakeLLM answers the sentiment prompt first, then the skeptic prompt.
type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

func (f *fakeLLM) GetModelName() string { return "fake-model" }

func testMarketData() *fakeMarketData {
	return &fakeMarketData{
		eod: marketdata.EODResponse{
			{DateStr: "2026-08-01", Close: 100, Volume: 1000},
			{DateStr: "2026-08-29", Close: 110, Volume: 1200},
		},
		news: marketdata.NewsResponse{
			{Title: "Record deliveries reported", Date: time.Now()},
			{Title: "Margin pressure from price cuts", Date: time.Now()},
		},
	}
}

const sentimentCompletion = `{
	"overall_sentiment": "bullish",
	"overall_confidence": 0.8,
	"confidence_reasoning": "Deliveries beat expectations",
	"headline_analyses": [
		{"headline": "Record deliveries reported", "sentiment": "bullish", "confidence": 0.9, "reasoning": "beat"}
	],
	"potential_impact": "Moderate Positive"
}`

const skepticCompletion = `{
	"sentiment": "Agree with Reservations",
	"confidence": 0.5,
	"primary_disagreement": "Two headlines is a thin evidence base",
	"hidden_risks": ["Price cut margin impact underweighted"]
}`

func TestAnalyzeFullPipeline(t *testing.T) {
	llm := &fakeLLM{responses: []string{sentimentCompletion, skepticCompletion}}
	svc := NewService(testMarketData(), llm, &common.MarketDataConfig{LookbackDays: 30, MaxHeadlines: 15}, arbor.NewLogger())

	result, err := svc.Analyze(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}

	if result.Ticker != "TSLA" {
		t.Errorf("ticker = %q", result.Ticker)
	}
	if result.Sentiment.OverallSentiment != models.SentimentBullish {
		t.Errorf("sentiment = %q", result.Sentiment.OverallSentiment)
	}
	if result.Skeptic.PrimaryDisagreement == "" {
		t.Error("expected skeptic critique to be populated")
	}
	if result.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", result.Iterations)
	}
	if len(result.PriceData) != 2 || len(result.Headlines) != 2 {
		t.Errorf("collection missing: %d prices, %d headlines", len(result.PriceData), len(result.Headlines))
	}
	if result.Summary == "" || result.SentimentReport == "" {
		t.Error("expected synthesized summary and report")
	}
	if !strings.Contains(result.SentimentReport, "Skeptic") {
		t.Error("report must include the skeptic section")
	}
	if llm.calls != 2 {
		t.Errorf("expected 2 LLM calls, got %d", llm.calls)
	}
}

func TestAnalyzePriceDataRequired(t *testing.T) {
	md := testMarketData()
	md.eodErr = errors.New("provider down")
	svc := NewService(md, &fakeLLM{}, &common.MarketDataConfig{}, arbor.NewLogger())

	_, err := svc.Analyze(context.Background(), "TSLA")
	if !errors.Is(err, models.ErrUpstreamAnalysis) {
		t.Errorf("expected ErrUpstreamAnalysis, got %v", err)
	}
}

func TestAnalyzeProviderThrottleClassifiedAsRateLimited(t *testing.T) {
	md := testMarketData()
	md.eodErr = &marketdata.RateLimitError{RetryAfter: time.Minute}
	svc := NewService(md, &fakeLLM{}, &common.MarketDataConfig{}, arbor.NewLogger())

	_, err := svc.Analyze(context.Background(), "TSLA")
	if !errors.Is(err, models.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if errors.Is(err, models.ErrUpstreamAnalysis) {
		t.Error("throttling must not be reported as an engine failure")
	}
}

func TestAnalyzeSentimentFailureAborts(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("rate limited upstream")}}
	svc := NewService(testMarketData(), llm, &common.MarketDataConfig{}, arbor.NewLogger())

	_, err := svc.Analyze(context.Background(), "TSLA")
	if !errors.Is(err, models.ErrUpstreamAnalysis) {
		t.Errorf("expected ErrUpstreamAnalysis, got %v", err)
	}
}

func TestAnalyzeSkepticFailureDegrades(t *testing.T) {
	llm := &fakeLLM{
		responses: []string{sentimentCompletion, "this is not json"},
	}
	svc := NewService(testMarketData(), llm, &common.MarketDataConfig{}, arbor.NewLogger())

	result, err := svc.Analyze(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if result.Skeptic.Sentiment != skepticAgreeReservations {
		t.Errorf("expected degraded skeptic verdict, got %q", result.Skeptic.Sentiment)
	}
	if result.Skeptic.Confidence != 0 {
		t.Errorf("degraded skeptic confidence should be 0, got %v", result.Skeptic.Confidence)
	}
}

func TestAnalyzeNoHeadlines(t *testing.T) {
	md := testMarketData()
	md.news = nil
	llm := &fakeLLM{}
	svc := NewService(md, llm, &common.MarketDataConfig{}, arbor.NewLogger())

	result, err := svc.Analyze(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("expected no LLM calls without headlines, got %d", llm.calls)
	}
	if result.Sentiment.OverallSentiment != models.SentimentNeutral {
		t.Errorf("expected neutral verdict, got %q", result.Sentiment.OverallSentiment)
	}
}
