package interfaces

import (
	"context"

	"github.com/ternarybob/stocksense/internal/models"
)

// StorageManager provides access to all storage implementations
type StorageManager interface {
	AnalysisStorage() AnalysisStorage
	AlertStorage() AlertStorage
	ThesisStorage() ThesisStorage
	SessionStorage() SessionStorage
	Close() error
}

// AnalysisStorage is the durable analysis cache: at most one row per ticker,
// written with upsert semantics.
type AnalysisStorage interface {
	// SaveAnalysis upserts the result keyed by its ticker, bumping UpdatedAt.
	SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error

	// GetAnalysis returns the cached row for the ticker, or models.ErrNotFound.
	GetAnalysis(ctx context.Context, ticker string) (*models.AnalysisResult, error)

	// DeleteAnalysis removes the row for the ticker, or models.ErrNotFound.
	DeleteAnalysis(ctx context.Context, ticker string) error

	// ListCachedTickers returns all cached tickers ordered by UpdatedAt descending.
	ListCachedTickers(ctx context.Context) ([]models.CachedTicker, error)

	// CountAnalyses returns the number of cached rows.
	CountAnalyses(ctx context.Context) (int, error)
}

// AlertStorage is the append-only alert log.
type AlertStorage interface {
	// AppendAlert writes a new alert row. The alert id must be unique.
	AppendAlert(ctx context.Context, alert *models.AlertEvent) error

	// GetAlert returns the alert by id, or models.ErrNotFound.
	GetAlert(ctx context.Context, id string) (*models.AlertEvent, error)

	// ListAlerts returns alerts owned by the user, newest first.
	ListAlerts(ctx context.Context, userID string, unreadOnly bool) ([]*models.AlertEvent, error)

	// HasUnreadAlert reports whether an unread alert of the given type exists
	// for the (user, thesis, ticker) tuple. Used for emitter deduplication.
	HasUnreadAlert(ctx context.Context, userID, thesisID, ticker, alertType string) (bool, error)

	// MarkRead flips the IsRead flag. Only the owning user may acknowledge;
	// returns models.ErrNotFound when the alert does not exist or is not theirs.
	MarkRead(ctx context.Context, userID, alertID string) error
}

// ThesisStorage persists user investment theses and their kill criteria.
type ThesisStorage interface {
	SaveThesis(ctx context.Context, thesis *models.Thesis) error
	GetThesis(ctx context.Context, id string) (*models.Thesis, error)
	DeleteThesis(ctx context.Context, userID, id string) error

	// ListTheses returns the user's theses, optionally filtered by ticker
	// (empty ticker means all).
	ListTheses(ctx context.Context, userID, ticker string) ([]*models.Thesis, error)

	// ListActiveByTicker returns every user's active theses for a ticker.
	// Used by the orchestrator and the background monitor.
	ListActiveByTicker(ctx context.Context, ticker string) ([]*models.Thesis, error)

	// ListActive returns all active theses across users for the monitor sweep.
	ListActive(ctx context.Context) ([]*models.Thesis, error)
}

// SessionStorage persists bearer token sessions.
type SessionStorage interface {
	SaveSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
