package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingUpdated       = "booking_updated"
	EventBookingRescheduled   = "booking_rescheduled"
	EventBookingStatusChanged = "booking_status_changed"
	EventBookingPaidChanged   = "booking_paid_changed"
	EventBlockoutCreated      = "blockout_created"
	EventBlockoutDeleted      = "blockout_deleted"
	EventScheduleChanged      = "schedule_changed"
)

// All lists every event type the services publish.
var All = []string{
	EventBookingCreated,
	EventBookingUpdated,
	EventBookingRescheduled,
	EventBookingStatusChanged,
	EventBookingPaidChanged,
	EventBlockoutCreated,
	EventBlockoutDeleted,
	EventScheduleChanged,
}

// BookingEventPayload is the booking snapshot sent to subscribers.
type BookingEventPayload struct {
	BookingID  string `json:"booking_id"`
	Client     string `json:"client"`
	Service    string `json:"service"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	PaidStatus string `json:"paid_status"`
	// PreviousDate and PreviousTime are set on reschedules.
	PreviousDate string `json:"previous_date,omitempty"`
	PreviousTime string `json:"previous_time,omitempty"`
}

type BlockoutEventPayload struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type ScheduleEventPayload struct {
	Weekday string   `json:"weekday,omitempty"`
	Ranges  []string `json:"ranges"`
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
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors are logged when a
// logger is given.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type synchronously.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil && b.logger != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// LogEvents subscribes an audit handler that writes every event at debug level.
func LogEvents(bus *EventBus, logger *zerolog.Logger) {
	for _, eventType := range All {
		bus.Subscribe(eventType, func(event *Event) error {
			logger.Debug().
				Str("event", event.Type).
				RawJSON("payload", event.Payload).
				Time("at", event.CreatedAt).
				Msg("domain event")
			return nil
		})
	}
}
