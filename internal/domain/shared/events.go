package shared

import (
	"sync"
	"time"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventHandler handles domain events
type EventHandler func(event DomainEvent) error

// EventDispatcher dispatches domain events to handlers
type EventDispatcher interface {
	Dispatch(event DomainEvent) error
	Register(eventName string, handler EventHandler)
}

// InProcessDispatcher delivers events synchronously to handlers registered by name.
// Handler errors do not stop delivery to the remaining handlers; the first one is returned.
type InProcessDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewInProcessDispatcher creates an empty dispatcher
func NewInProcessDispatcher() *InProcessDispatcher {
	return &InProcessDispatcher{handlers: make(map[string][]EventHandler)}
}

// Register adds a handler for an event name. The name "*" receives every event.
func (d *InProcessDispatcher) Register(eventName string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// Dispatch delivers the event
func (d *InProcessDispatcher) Dispatch(event DomainEvent) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.handlers[event.EventName()]...)
	handlers = append(handlers, d.handlers["*"]...)
	d.mu.RUnlock()

	var first error
	for _, h := range handlers {
		if err := h(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
