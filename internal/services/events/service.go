// Package events provides the in-process alert event bus. Emitted alerts are
// published here and fanned out to subscribers such as websocket sessions.
package events

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// subscriberBuffer bounds each subscriber channel. Slow consumers drop
// events rather than block the publisher.
const subscriberBuffer = 16

// Service implements EventService with a channel-based pub/sub pattern.
type Service struct {
	mu          sync.Mutex
	subscribers map[int]chan *models.AlertEvent
	nextID      int
	logger      arbor.ILogger
}

// NewService creates a new alert event bus.
func NewService(logger arbor.ILogger) interfaces.EventService {
	return &Service{
		subscribers: make(map[int]chan *models.AlertEvent),
		logger:      logger,
	}
}

// PublishAlert delivers an alert to all current subscribers. Delivery is
// best-effort: a subscriber with a full buffer misses the event.
func (s *Service) PublishAlert(alert *models.AlertEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.subscribers) == 0 {
		s.logger.Debug().
			Str("alert_id", alert.ID).
			Msg("No subscribers for alert event")
		return
	}

	delivered := 0
	for _, ch := range s.subscribers {
		select {
		case ch <- alert:
			delivered++
		default:
		}
	}

	s.logger.Debug().
		Str("alert_id", alert.ID).
		Str("ticker", alert.Ticker).
		Int("delivered", delivered).
		Int("subscriber_count", len(s.subscribers)).
		Msg("Alert event published")
}

// SubscribeAlerts registers a new subscriber. The returned cancel function
// removes the subscription and closes the channel.
func (s *Service) SubscribeAlerts() (<-chan *models.AlertEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *models.AlertEvent, subscriberBuffer)
	s.subscribers[id] = ch

	s.logger.Debug().
		Int("subscriber_count", len(s.subscribers)).
		Msg("Alert subscriber registered")

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}

	return ch, cancel
}
