// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by KeyValueStore.Get when nothing is stored under the key
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded is wrapped by KeyValueStore.Set when the write does not fit
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// KeyValueStore is the persistent string-keyed blob store the pantry is written to.
// Set must either store the whole value or fail without a partial write.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// CategoryAssignment pairs an item text with the category label the AI chose for it.
// Labels are free-form strings; any label returned becomes a display group.
type CategoryAssignment struct {
	Ingredient string `json:"ingredient"`
	Category   string `json:"category"`
}

// Categorizer groups ingredient names into categories. It may return an empty slice
// and is not required to cover every input item.
type Categorizer interface {
	Categorize(ctx context.Context, items []string) ([]CategoryAssignment, error)
	Name() string
}
