package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/models"
)

// memAlertStorage is an in-memory AlertStorage for emitter tests.
type memAlertStorage struct {
	alerts    []*models.AlertEvent
	appendErr error
}

func (m *memAlertStorage) AppendAlert(ctx context.Context, alert *models.AlertEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *memAlertStorage) GetAlert(ctx context.Context, id string) (*models.AlertEvent, error) {
	for _, a := range m.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memAlertStorage) ListAlerts(ctx context.Context, userID string, unreadOnly bool) ([]*models.AlertEvent, error) {
	var out []*models.AlertEvent
	for _, a := range m.alerts {
		if a.UserID == userID && (!unreadOnly || !a.IsRead) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlertStorage) HasUnreadAlert(ctx context.Context, userID, thesisID, ticker, alertType string) (bool, error) {
	for _, a := range m.alerts {
		if a.UserID == userID && a.ThesisID == thesisID && a.Ticker == ticker && a.AlertType == alertType && !a.IsRead {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAlertStorage) MarkRead(ctx context.Context, userID, alertID string) error {
	for _, a := range m.alerts {
		if a.ID == alertID && a.UserID == userID {
			a.IsRead = true
			return nil
		}
	}
	return models.ErrNotFound
}

type recordingBus struct {
	published []*models.AlertEvent
}

func (r *recordingBus) PublishAlert(alert *models.AlertEvent) {
	r.published = append(r.published, alert)
}

func (r *recordingBus) SubscribeAlerts() (<-chan *models.AlertEvent, func()) {
	return nil, func() {}
}

func activeThesis() *models.Thesis {
	return &models.Thesis{
		ID:     "thesis-1",
		UserID: "user-1",
		Ticker: "TSLA",
		Status: models.ThesisStatusActive,
		KillCriteria: []models.KillCriterion{
			{Kind: models.CriterionConfidence, Confidence: 0.7},
		},
	}
}

func bearishResult(confidence float64) *models.AnalysisResult {
	return &models.AnalysisResult{
		Ticker: "TSLA",
		Sentiment: models.SentimentVerdict{
			OverallSentiment:  models.SentimentBearish,
			OverallConfidence: confidence,
		},
	}
}

func TestEvaluateEmitsAlert(t *testing.T) {
	storage := &memAlertStorage{}
	bus := &recordingBus{}
	emitter := NewService(storage, bus, arbor.NewLogger())

	alert, err := emitter.Evaluate(context.Background(), activeThesis(), bearishResult(0.8))
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if alert == nil {
		t.Fatal("expected alert for fired criterion")
	}

	if alert.AlertType != models.AlertTypeKillCriteria {
		t.Errorf("alert type = %q", alert.AlertType)
	}
	if alert.UserID != "user-1" || alert.ThesisID != "thesis-1" || alert.Ticker != "TSLA" {
		t.Errorf("alert ownership wrong: %+v", alert)
	}
	if alert.IsRead {
		t.Error("emitted alert must start unread")
	}
	if alert.Context["sentiment"] != models.SentimentBearish {
		t.Errorf("context sentiment = %v", alert.Context["sentiment"])
	}
	if len(storage.alerts) != 1 {
		t.Errorf("expected 1 persisted alert, got %d", len(storage.alerts))
	}
	if len(bus.published) != 1 {
		t.Errorf("expected 1 published alert, got %d", len(bus.published))
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	storage := &memAlertStorage{}
	emitter := NewService(storage, nil, arbor.NewLogger())

	alert, err := emitter.Evaluate(context.Background(), activeThesis(), bearishResult(0.5))
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if alert != nil {
		t.Errorf("expected no alert below threshold, got %+v", alert)
	}
	if len(storage.alerts) != 0 {
		t.Errorf("expected nothing persisted, got %d", len(storage.alerts))
	}
}

func TestEvaluateSkipsInactiveThesis(t *testing.T) {
	storage := &memAlertStorage{}
	emitter := NewService(storage, nil, arbor.NewLogger())

	thesis := activeThesis()
	thesis.Status = models.ThesisStatusExited

	alert, err := emitter.Evaluate(context.Background(), thesis, bearishResult(0.9))
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if alert != nil {
		t.Error("inactive thesis must not emit alerts")
	}
}

func TestEvaluateDedup(t *testing.T) {
	storage := &memAlertStorage{}
	emitter := NewService(storage, nil, arbor.NewLogger())
	ctx := context.Background()
	thesis := activeThesis()

	first, err := emitter.Evaluate(ctx, thesis, bearishResult(0.8))
	if err != nil || first == nil {
		t.Fatalf("first Evaluate() = %v, %v", first, err)
	}

	// Unread alert pending: second evaluation is suppressed
	second, err := emitter.Evaluate(ctx, thesis, bearishResult(0.9))
	if err != nil {
		t.Fatalf("second Evaluate() failed: %v", err)
	}
	if second != nil {
		t.Error("expected dedup against pending unread alert")
	}

	// After acknowledgement the same criterion may alert again
	if err := storage.MarkRead(ctx, "user-1", first.ID); err != nil {
		t.Fatalf("MarkRead() failed: %v", err)
	}
	third, err := emitter.Evaluate(ctx, thesis, bearishResult(0.9))
	if err != nil {
		t.Fatalf("third Evaluate() failed: %v", err)
	}
	if third == nil {
		t.Error("expected re-alert after acknowledgement")
	}
}

func TestEvaluateSwallowsPersistenceFailure(t *testing.T) {
	storage := &memAlertStorage{appendErr: errors.New("disk full")}
	emitter := NewService(storage, nil, arbor.NewLogger())

	alert, err := emitter.Evaluate(context.Background(), activeThesis(), bearishResult(0.9))
	if err != nil {
		t.Fatalf("Evaluate() must swallow persistence failures, got %v", err)
	}
	if alert != nil {
		t.Error("no alert should be reported when persistence failed")
	}
}
