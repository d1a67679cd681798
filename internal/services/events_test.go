package services

import (
	"testing"
	"time"

	"github.com/complaintdesk/portal/internal/models"
)

func TestEventHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewEventHub()
	if hub.ClientCount() != 0 {
		t.Errorf("new hub should have 0 clients, got %d", hub.ClientCount())
	}

	hub.Subscribe("dash-1")
	ch := hub.Subscribe("dash-2")
	if hub.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.ClientCount())
	}

	hub.Unsubscribe("dash-2")
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	hub.Unsubscribe("nonexistent")
	if hub.ClientCount() != 1 {
		t.Errorf("unsubscribing nonexistent should not affect count, got %d", hub.ClientCount())
	}
}

func TestEventHub_PublishMultipleClients(t *testing.T) {
	hub := NewEventHub()
	ch1 := hub.Subscribe("a")
	ch2 := hub.Subscribe("b")

	hub.Publish(NewComplaintEvent(EventComplaintCreated, &models.Complaint{ID: "c1", Status: models.StatusPending}))

	for i, ch := range []<-chan ComplaintEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.ID != "c1" || ev.Type != EventComplaintCreated {
				t.Errorf("client%d: unexpected event %+v", i+1, ev)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client%d: timed out waiting for event", i+1)
		}
	}
}

func TestEventHub_NonBlockingPublish(t *testing.T) {
	hub := NewEventHub()
	hub.Subscribe("slow_client")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 250; i++ {
			hub.Publish(ComplaintEvent{Type: EventComplaintUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full client buffer")
	}
}

func TestNewComplaintEvent_NilComplaint(t *testing.T) {
	ev := NewComplaintEvent(EventComplaintDeleted, nil)
	if ev.Type != EventComplaintDeleted || ev.ID != "" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.At.IsZero() {
		t.Error("event time should be set")
	}
}

func TestGetEventHub_Singleton(t *testing.T) {
	if GetEventHub() != GetEventHub() {
		t.Error("GetEventHub should return the same instance")
	}
}
