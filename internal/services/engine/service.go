// Package engine implements the multi-stage analysis pipeline: market data
// collection, Stage-1 sentiment classification, Stage-2 skeptic critique,
// and report synthesis.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/marketdata"
	"github.com/ternarybob/stocksense/internal/models"
)

const (
	defaultLookbackDays = 30
	defaultMaxHeadlines = 15

	// Symbols are qualified with the US exchange suffix expected by the
	// market data provider.
	exchangeSuffix = ".US"
)

// MarketDataClient is the subset of the market data client the engine uses.
type MarketDataClient interface {
	GetEOD(ctx context.Context, symbol string, opts ...marketdata.QueryOption) (marketdata.EODResponse, error)
	GetNews(ctx context.Context, symbol string, opts ...marketdata.QueryOption) (marketdata.NewsResponse, error)
	GetFundamentals(ctx context.Context, symbol string) (json.RawMessage, error)
}

// Service runs the full analysis pipeline for a ticker.
type Service struct {
	marketData   MarketDataClient
	llm          interfaces.LLMService
	logger       arbor.ILogger
	lookbackDays int
	maxHeadlines int
}

// NewService creates a new analysis engine.
func NewService(marketData MarketDataClient, llm interfaces.LLMService, config *common.MarketDataConfig, logger arbor.ILogger) *Service {
	lookback := config.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}
	maxHeadlines := config.MaxHeadlines
	if maxHeadlines <= 0 {
		maxHeadlines = defaultMaxHeadlines
	}

	return &Service{
		marketData:   marketData,
		llm:          llm,
		logger:       logger,
		lookbackDays: lookback,
		maxHeadlines: maxHeadlines,
	}
}

// Analyze runs the complete pipeline for a normalized ticker and returns a
// fully populated result. Upstream failures (market data, LLM, unparseable
// completions) are wrapped as ErrUpstreamAnalysis; provider throttling is
// wrapped as ErrRateLimited so callers can surface a retry advisory.
func (s *Service) Analyze(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	start := time.Now()
	symbol := ticker + exchangeSuffix

	result := &models.AnalysisResult{
		Ticker: ticker,
	}

	s.logger.Info().
		Str("ticker", ticker).
		Str("model", s.llm.GetModelName()).
		Msg("Starting analysis pipeline")

	// Collection
	if err := s.collect(ctx, symbol, result); err != nil {
		return nil, err
	}

	// Stage 1: sentiment
	sentiment, err := s.runSentimentStage(ctx, ticker, result)
	if err != nil {
		return nil, err
	}
	result.Sentiment = *sentiment
	result.ReasoningSteps = append(result.ReasoningSteps,
		fmt.Sprintf("Stage 1: classified %d headlines, overall %s (%.0f%% confidence)",
			len(result.Headlines), sentiment.OverallSentiment, sentiment.OverallConfidence*100))
	result.Iterations++

	// Stage 2: skeptic critique. Failures here degrade rather than abort
	// so a weak critique never loses a completed sentiment pass.
	skeptic := s.runSkepticStage(ctx, ticker, result)
	result.Skeptic = *skeptic
	result.ReasoningSteps = append(result.ReasoningSteps,
		fmt.Sprintf("Stage 2: skeptic verdict %q (%.0f%% confidence)", skeptic.Sentiment, skeptic.Confidence*100))
	result.Iterations++

	// Synthesis
	result.Summary = buildSummary(result)
	result.SentimentReport = buildSentimentReport(result)

	s.logger.Info().
		Str("ticker", ticker).
		Str("sentiment", result.Sentiment.OverallSentiment).
		Int("headlines", len(result.Headlines)).
		Int("price_points", len(result.PriceData)).
		Dur("duration", time.Since(start)).
		Msg("Analysis pipeline completed")

	return result, nil
}

// collect gathers prices, headlines and fundamentals. Price data is required;
// news and fundamentals degrade to empty on provider errors.
func (s *Service) collect(ctx context.Context, symbol string, result *models.AnalysisResult) error {
	now := time.Now()
	from := now.AddDate(0, 0, -s.lookbackDays)

	eod, err := s.marketData.GetEOD(ctx, symbol, marketdata.WithDateRange(from, now))
	if err != nil {
		var rateErr *marketdata.RateLimitError
		if errors.As(err, &rateErr) {
			return fmt.Errorf("%w: market data provider throttled %s: %v", models.ErrRateLimited, symbol, err)
		}
		return fmt.Errorf("%w: price data collection failed for %s: %v", models.ErrUpstreamAnalysis, symbol, err)
	}
	result.PriceData = make([]models.PricePoint, 0, len(eod))
	for _, day := range eod {
		result.PriceData = append(result.PriceData, models.PricePoint{
			Date:   day.DateStr,
			Open:   day.Open,
			High:   day.High,
			Low:    day.Low,
			Close:  day.Close,
			Volume: day.Volume,
		})
	}
	result.ToolsUsed = append(result.ToolsUsed, "eod_prices")
	result.ReasoningSteps = append(result.ReasoningSteps,
		fmt.Sprintf("Collected %d daily price points over %d days", len(result.PriceData), s.lookbackDays))

	news, err := s.marketData.GetNews(ctx, symbol, marketdata.WithDateRange(from, now), marketdata.WithLimit(s.maxHeadlines))
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("News collection failed, continuing without headlines")
	} else {
		for _, item := range news {
			if len(result.Headlines) >= s.maxHeadlines {
				break
			}
			result.Headlines = append(result.Headlines, models.Headline{
				Title:       item.Title,
				Source:      item.Link,
				URL:         item.Link,
				PublishedAt: item.Date,
			})
		}
		result.ToolsUsed = append(result.ToolsUsed, "news_headlines")
		result.ReasoningSteps = append(result.ReasoningSteps,
			fmt.Sprintf("Collected %d recent headlines", len(result.Headlines)))
	}

	fundamentals, err := s.marketData.GetFundamentals(ctx, symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Fundamentals collection failed, continuing without fundamentals")
	} else {
		result.FundamentalData = fundamentals
		result.ToolsUsed = append(result.ToolsUsed, "fundamentals")
	}

	return nil
}

// runSentimentStage asks the LLM to classify the collected headlines. When no
// headlines were collected, a neutral low-confidence verdict is returned
// without a provider call.
func (s *Service) runSentimentStage(ctx context.Context, ticker string, result *models.AnalysisResult) (*models.SentimentVerdict, error) {
	if len(result.Headlines) == 0 {
		s.logger.Debug().Str("ticker", ticker).Msg("No headlines collected, skipping sentiment completion")
		return &models.SentimentVerdict{
			OverallSentiment:    models.SentimentNeutral,
			OverallConfidence:   0,
			ConfidenceReasoning: "No recent headlines were available to analyze",
			InformationGaps:     []string{"No news coverage in the lookback window"},
		}, nil
	}

	messages := []interfaces.Message{
		{Role: "system", Content: sentimentSystemPrompt},
		{Role: "user", Content: buildSentimentPrompt(ticker, result)},
	}

	completion, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: sentiment stage failed for %s: %v", models.ErrUpstreamAnalysis, ticker, err)
	}
	result.ToolsUsed = append(result.ToolsUsed, "llm:"+s.llm.GetModelName())

	verdict, err := parseSentimentVerdict(completion)
	if err != nil {
		return nil, fmt.Errorf("%w: sentiment stage returned unparseable output for %s: %v", models.ErrUpstreamAnalysis, ticker, err)
	}

	return verdict, nil
}

// runSkepticStage generates the contrarian critique of the Stage-1 verdict.
// A failed or unparseable critique degrades to a cautionary default.
func (s *Service) runSkepticStage(ctx context.Context, ticker string, result *models.AnalysisResult) *models.SkepticVerdict {
	if len(result.Headlines) == 0 {
		return &models.SkepticVerdict{
			Sentiment:           skepticAgreeReservations,
			Confidence:          0,
			PrimaryDisagreement: "Cannot critique an analysis that had no headlines to work with",
			HiddenRisks:         []string{"No data available for skeptical analysis"},
			WouldChangeMind:     []string{"Actual headlines to analyze"},
		}
	}

	messages := []interfaces.Message{
		{Role: "system", Content: skepticSystemPrompt},
		{Role: "user", Content: buildSkepticPrompt(ticker, result)},
	}

	completion, err := s.llm.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Skeptic stage failed, degrading to cautionary default")
		return degradedSkepticVerdict(fmt.Sprintf("Error generating critique: %v", err))
	}

	verdict, err := parseSkepticVerdict(completion)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Skeptic stage returned unparseable output, degrading to cautionary default")
		return degradedSkepticVerdict(fmt.Sprintf("Could not generate structured critique: %v", err))
	}

	return verdict
}

func degradedSkepticVerdict(reason string) *models.SkepticVerdict {
	return &models.SkepticVerdict{
		Sentiment:           skepticAgreeReservations,
		Confidence:          0,
		PrimaryDisagreement: reason,
		HiddenRisks:         []string{"Skeptic analysis failed - treat the primary analysis with extra caution"},
	}
}
