package interfaces

import (
	"context"

	"github.com/ternarybob/stocksense/internal/models"
)

// AnalysisService mediates get-or-compute semantics over the analysis store.
type AnalysisService interface {
	// RequestAnalysis serves the cached row unless force is set or no row
	// exists, in which case it invokes the engine and upserts the result.
	// A present principal additionally schedules kill-criteria evaluation
	// for freshly computed (never cached) results.
	RequestAnalysis(ctx context.Context, ticker string, force bool, principal *models.Principal) (*models.AnalysisResult, error)

	// GetCachedResult returns the cached row or models.ErrNotFound. Never computes.
	GetCachedResult(ctx context.Context, ticker string) (*models.AnalysisResult, error)

	// ListCachedTickers returns cached tickers, most recently updated first.
	ListCachedTickers(ctx context.Context) ([]models.CachedTicker, error)

	// EvictAnalysis removes the cached row or returns models.ErrNotFound.
	EvictAnalysis(ctx context.Context, ticker string) (string, error)
}

// AlertEmitter evaluates kill criteria against freshly computed results.
type AlertEmitter interface {
	// Evaluate returns the emitted alert, or nil when no criterion fired or
	// an unread alert for the same (user, thesis, ticker) already exists.
	Evaluate(ctx context.Context, thesis *models.Thesis, fresh *models.AnalysisResult) (*models.AlertEvent, error)
}

// EventService publishes emitted alerts to in-process subscribers (the
// websocket push handler).
type EventService interface {
	PublishAlert(alert *models.AlertEvent)
	SubscribeAlerts() (<-chan *models.AlertEvent, func())
}
