package events

import (
	"time"
)

// Event records one mutation of a collection, such as a part saved or an
// order confirmed.
type Event interface {
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore is an append-only activity log with synchronous subscribers.
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

type BaseEvent struct {
	EventType    string    `json:"type"`
	Stream       string    `json:"stream"`
	EventData    any       `json:"data"`
	EventTime    time.Time `json:"timestamp"`
	EventVersion int       `json:"version"`
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() any {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// NewEvent builds a version 1 event; the store assigns the stream version on
// append.
func NewEvent(eventType, streamID string, data any, at time.Time) Event {
	return BaseEvent{
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    at,
		EventVersion: 1,
	}
}

// HandlerFunc adapts a function to EventHandler for the given types.
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
