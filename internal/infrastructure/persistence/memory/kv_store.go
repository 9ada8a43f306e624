// Package memory provides an in-memory key-value store with an optional byte quota,
// matching the limits of browser-style local storage
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// DefaultQuotaBytes mirrors the common 5 MB local storage limit
const DefaultQuotaBytes = 5 * 1024 * 1024

// KVStore implements outbound.KeyValueStore in memory
type KVStore struct {
	data       map[string][]byte
	used       int
	quotaBytes int
	mutex      sync.RWMutex
}

// NewKVStore creates an in-memory store. A quota of zero or less disables the limit.
func NewKVStore(quotaBytes int) *KVStore {
	return &KVStore{
		data:       make(map[string][]byte),
		quotaBytes: quotaBytes,
	}
}

var _ outbound.KeyValueStore = (*KVStore)(nil)

// Get retrieves a copy of the value stored under key
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return nil, outbound.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores value under key. Keys and values both count towards the quota.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	used := s.used + len(key) + len(value)
	if old, exists := s.data[key]; exists {
		used -= len(key) + len(old)
	}
	if s.quotaBytes > 0 && used > s.quotaBytes {
		return fmt.Errorf("%w: %d of %d bytes", outbound.ErrQuotaExceeded, used, s.quotaBytes)
	}

	s.data[key] = append([]byte(nil), value...)
	s.used = used
	return nil
}

// Delete removes a key
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, exists := s.data[key]; exists {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Ping always succeeds
func (s *KVStore) Ping(ctx context.Context) error {
	return nil
}

// Keys returns every stored key
func (s *KVStore) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Used returns the number of bytes counted against the quota
func (s *KVStore) Used() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.used
}
