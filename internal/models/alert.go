package models

import "time"

// Alert types written to the alert log.
const (
	AlertTypeKillCriteria  = "kill_criteria"
	AlertTypePriceMovement = "price_movement"
	AlertTypeNewsSentiment = "news_sentiment"
)

// AlertEvent is one row in the append-only alert log. Rows are immutable
// after creation except for the IsRead flag, which only the owning user
// may toggle.
type AlertEvent struct {
	ID        string                 `json:"id" badgerhold:"key"`
	UserID    string                 `json:"user_id" badgerhold:"index"`
	ThesisID  string                 `json:"thesis_id"`
	Ticker    string                 `json:"ticker"`
	AlertType string                 `json:"alert_type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}
