// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockCategorizer provides a mock implementation of outbound.Categorizer
type MockCategorizer struct {
	mock.Mock
}

// NewMockCategorizer creates a new mock categorizer
func NewMockCategorizer() *MockCategorizer {
	return &MockCategorizer{}
}

// Categorize returns the configured assignments
func (m *MockCategorizer) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]outbound.CategoryAssignment), args.Error(1)
}

// Name returns the provider name
func (m *MockCategorizer) Name() string {
	return "mock-categorizer"
}

var _ outbound.Categorizer = (*MockCategorizer)(nil)

// FuncCategorizer adapts a function to outbound.Categorizer, for tests that need
// to block or observe the call
type FuncCategorizer func(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error)

// Categorize calls f
func (f FuncCategorizer) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	return f(ctx, items)
}

// Name returns the provider name
func (f FuncCategorizer) Name() string {
	return "func-categorizer"
}

// MockKeyValueStore provides a mock implementation of outbound.KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

// NewMockKeyValueStore creates a new mock key-value store
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{}
}

// Get returns the configured value
func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set records the write
func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete records the delete
func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Ping returns the configured error
func (m *MockKeyValueStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ outbound.KeyValueStore = (*MockKeyValueStore)(nil)

// RecordingDispatcher records every dispatched domain event
type RecordingDispatcher struct {
	mu     sync.RWMutex
	events []shared.DomainEvent
}

// NewRecordingDispatcher creates a new recording dispatcher
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

// Register is a no-op; events are only recorded
func (d *RecordingDispatcher) Register(string, shared.EventHandler) {}

// Dispatch records the event
func (d *RecordingDispatcher) Dispatch(event shared.DomainEvent) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	return nil
}

// Events returns all dispatched events
func (d *RecordingDispatcher) Events() []shared.DomainEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]shared.DomainEvent(nil), d.events...)
}

// Names returns the names of all dispatched events in order
func (d *RecordingDispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, len(d.events))
	for i, e := range d.events {
		names[i] = e.EventName()
	}
	return names
}

// Clear forgets recorded events
func (d *RecordingDispatcher) Clear() {
	d.mu.Lock()
	d.events = nil
	d.mu.Unlock()
}

var _ shared.EventDispatcher = (*RecordingDispatcher)(nil)
