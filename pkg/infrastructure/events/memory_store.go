package events

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultCapacity bounds the activity log kept in memory.
const DefaultCapacity = 500

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	capacity    int
	logger      *zap.Logger
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		capacity:    DefaultCapacity,
		logger:      logger,
	}
}

// WithCapacity sets how many events ReadAllEvents retains.
func (s *InMemoryEventStore) WithCapacity(n int) *InMemoryEventStore {
	s.capacity = n
	return s
}

// AppendEvent records the event and delivers it to subscribers before
// returning. Handler errors are logged and do not fail the append.
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	if s.capacity > 0 && len(s.allEvents) > s.capacity {
		s.allEvents = append([]Event(nil), s.allEvents[len(s.allEvents)-s.capacity:]...)
	}
	handlers := append([]EventHandler(nil), s.subscribers[eventWithVersion.EventType]...)
	s.mutex.Unlock()

	for _, handler := range handlers {
		if !handler.CanHandle(eventWithVersion.EventType) {
			continue
		}
		if err := handler.Handle(eventWithVersion); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("event", eventWithVersion.EventType),
				zap.String("stream", streamID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}
