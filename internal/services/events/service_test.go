package events

import (
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/models"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewService(arbor.NewLogger())

	ch1, cancel1 := bus.SubscribeAlerts()
	defer cancel1()
	ch2, cancel2 := bus.SubscribeAlerts()
	defer cancel2()

	alert := &models.AlertEvent{ID: "alert-1", Ticker: "TSLA"}
	bus.PublishAlert(alert)

	for _, ch := range []<-chan *models.AlertEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.ID != "alert-1" {
				t.Errorf("got alert %q", got.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive alert")
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewService(arbor.NewLogger())

	ch, cancel := bus.SubscribeAlerts()
	cancel()

	// Channel is closed after cancel
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic
	bus.PublishAlert(&models.AlertEvent{ID: "alert-2"})

	// Double cancel is a no-op
	cancel()
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := NewService(arbor.NewLogger())

	_, cancel := bus.SubscribeAlerts()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.PublishAlert(&models.AlertEvent{ID: "flood"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}
