package services

import (
	"sync"
	"time"

	"github.com/complaintdesk/portal/internal/models"
)

const (
	EventComplaintCreated = "complaint.created"
	EventComplaintUpdated = "complaint.updated"
	EventComplaintDeleted = "complaint.deleted"
)

// ComplaintEvent tells open dashboards that the list changed
type ComplaintEvent struct {
	Type     string    `json:"type"`
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Status   string    `json:"status,omitempty"`
	Priority string    `json:"priority,omitempty"`
	Category string    `json:"category,omitempty"`
	At       time.Time `json:"at"`
}

func NewComplaintEvent(eventType string, c *models.Complaint) ComplaintEvent {
	ev := ComplaintEvent{Type: eventType, At: time.Now().UTC()}
	if c != nil {
		ev.ID = c.ID
		ev.Title = c.Title
		ev.Status = c.Status
		ev.Priority = c.Priority
		ev.Category = c.Category
	}
	return ev
}

// EventHub fans complaint events out to SSE clients
type EventHub struct {
	clients map[string]chan ComplaintEvent
	mu      sync.RWMutex
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan ComplaintEvent),
	}
}

// Subscribe registers a client. The channel is buffered so Publish never blocks.
func (h *EventHub) Subscribe(clientID string) <-chan ComplaintEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ComplaintEvent, 100)
	h.clients[clientID] = ch
	return ch
}

func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts to all clients, dropping the event for any client whose buffer is full.
func (h *EventHub) Publish(event ComplaintEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var globalEventHub *EventHub
var eventHubOnce sync.Once

func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		globalEventHub = NewEventHub()
	})
	return globalEventHub
}
