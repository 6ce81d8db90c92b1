package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

const (
	EventReservationCreated = "reservation_created"
	EventReservationUpdated = "reservation_updated"
	EventReservationDeleted = "reservation_deleted"
	EventCartItemAdded      = "cart_item_added"
	EventCartItemUpdated    = "cart_item_updated"
	EventCartItemRemoved    = "cart_item_removed"
	EventCartCleared        = "cart_cleared"
	EventLeaveRequested     = "leave_requested"
	EventLeaveDecided       = "leave_decided"
)

// anyEvent is the subscription key for handlers that want every event.
const anyEvent = "*"

// ReservationEventPayload is the reservation snapshot handed to consumers.
type ReservationEventPayload struct {
	ID            string `json:"_id"`
	ReservationID string `json:"reservationId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime,omitempty"`
	EndTime       string `json:"endTime,omitempty"`
	Guests        int    `json:"guests,omitempty"`
	Version       int64  `json:"__v"`
	ChangedBy     string `json:"changedBy,omitempty"`
}

type CartEventPayload struct {
	ItemID   string `json:"itemId,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Removed  int64  `json:"removed,omitempty"`
}

type LeaveEventPayload struct {
	LeaveID    string `json:"leaveId"`
	EmployeeID string `json:"employeeId"`
	Status     string `json:"status"`
	DecidedBy  string `json:"decidedBy,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler invoked for every event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.Subscribe(anyEvent, handler)
}

// Publish runs the subscribers synchronously and joins their errors. A
// failing handler does not stop the others.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers[anyEvent]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(&event)
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
