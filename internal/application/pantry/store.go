// Package pantry provides the application layer for pantry management.
// It implements the use cases defined in the inbound ports on top of a durable store.
package pantry

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"go.uber.org/zap"
)

// DefaultStorageKey is the key the pantry state is persisted under
const DefaultStorageKey = "pantry"

// Store owns the persisted pantry state. It is the only writer of the pantry key.
type Store struct {
	kv        outbound.KeyValueStore
	key       string
	locations []pantry.Location
	events    shared.EventDispatcher
	logger    *zap.Logger
	now       func() time.Time
}

// NewStore creates a store for the declared locations. The first location receives
// entries migrated from the legacy single-location format.
func NewStore(
	kv outbound.KeyValueStore,
	key string,
	locations []pantry.Location,
	events shared.EventDispatcher,
	logger *zap.Logger,
) (*Store, error) {
	if len(locations) == 0 {
		return nil, pantry.ErrNoLocations
	}
	seen := make(map[pantry.Location]bool, len(locations))
	for _, loc := range locations {
		if loc == "" {
			return nil, fmt.Errorf("location name must not be empty")
		}
		if seen[loc] {
			return nil, fmt.Errorf("location %q declared twice", loc)
		}
		seen[loc] = true
	}
	if key == "" {
		key = DefaultStorageKey
	}
	return &Store{
		kv:        kv,
		key:       key,
		locations: append([]pantry.Location(nil), locations...),
		events:    events,
		logger:    logger.Named("pantry-store"),
		now:       time.Now,
	}, nil
}

// Key returns the storage key
func (s *Store) Key() string {
	return s.key
}

// Locations returns the declared locations in declaration order
func (s *Store) Locations() []pantry.Location {
	return append([]pantry.Location(nil), s.locations...)
}

// Load reads the persisted state. Unparseable data is backed up and reported as a
// CORRUPTED_STORE error; everything else is repaired and reported as notifications.
func (s *Store) Load(ctx context.Context) (pantry.State, []pantry.Notification, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if stderrors.Is(err, outbound.ErrKeyNotFound) {
		s.logger.Debug("No stored pantry found, starting empty", zap.String("key", s.key))
		return pantry.NewState(s.locations), nil, nil
	}
	if err != nil {
		return nil, nil, errors.NewStorageError("read pantry", err)
	}

	result, err := pantry.Decode(raw, s.locations)
	if err != nil {
		return nil, nil, s.backupCorrupted(ctx, raw, err)
	}

	var notes []pantry.Notification
	if result.InvalidShape {
		s.logger.Warn("Stored pantry has an unexpected shape, starting empty", zap.String("key", s.key))
		notes = append(notes, pantry.Notification{
			Level:   pantry.NotificationWarning,
			Code:    pantry.NoticeInvalidShape,
			Message: "Saved pantry data had an unexpected format and was ignored. Starting with an empty pantry.",
		})
		s.dispatch(pantry.StoreRecoveredEvent{Reset: true, RecoveredAt: s.now()})
		return result.State, notes, nil
	}

	for _, w := range result.Warnings {
		s.logger.Debug("Pantry entry recovered", zap.String("warning", w.String()))
	}

	if result.Migrated {
		first := s.locations[0]
		notes = append(notes, pantry.Notification{
			Level: pantry.NotificationInfo,
			Code:  pantry.NoticeLegacyMigrated,
			Message: fmt.Sprintf("Your pantry was upgraded to support multiple locations. %d item(s) were moved to %s.",
				len(result.State[first]), first),
		})
	}
	if dropped, defaulted := result.Dropped(), result.Defaulted(); dropped > 0 || defaulted > 0 {
		notes = append(notes, pantry.Notification{
			Level:   pantry.NotificationWarning,
			Code:    pantry.NoticeEntriesRecovered,
			Message: recoveryMessage(dropped, defaulted),
		})
	}

	if result.NeedsRewrite() {
		if err := s.Save(ctx, result.State); err != nil {
			return nil, nil, err
		}
		s.logger.Info("Persisted recovered pantry state",
			zap.Bool("migrated", result.Migrated),
			zap.Int("dropped", result.Dropped()),
			zap.Int("defaulted", result.Defaulted()),
		)
		s.dispatch(pantry.StoreRecoveredEvent{
			Dropped:     result.Dropped(),
			Defaulted:   result.Defaulted(),
			Migrated:    result.Migrated,
			RecoveredAt: s.now(),
		})
	}

	return result.State, notes, nil
}

// Save serializes and writes the full state. A full store is reported as QUOTA_EXCEEDED.
func (s *Store) Save(ctx context.Context, state pantry.State) error {
	for _, loc := range s.locations {
		for i, entry := range state[loc] {
			if err := entry.Validate(); err != nil {
				return errors.NewValidationError(fmt.Sprintf("%s entry %d: %v", loc, i, err)).
					WithCause(err).
					WithMetadata("location", string(loc))
			}
		}
	}
	data, err := pantry.Encode(state, s.locations)
	if err != nil {
		return errors.Wrap(err, "failed to encode pantry")
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		if stderrors.Is(err, outbound.ErrQuotaExceeded) {
			s.logger.Warn("Pantry storage quota exceeded", zap.Int("bytes", len(data)))
			return errors.NewQuotaExceededError(s.key, len(data), err)
		}
		s.logger.Error("Failed to save pantry", zap.Error(err))
		return errors.NewStorageError("save pantry", err)
	}
	return nil
}

func (s *Store) backupCorrupted(ctx context.Context, raw []byte, cause error) error {
	backupKey := fmt.Sprintf("%s_corrupted_%d", s.key, s.now().UnixMilli())
	appErr := errors.NewCorruptedStoreError(s.key, backupKey, cause)
	if err := s.kv.Set(ctx, backupKey, raw); err != nil {
		s.logger.Error("Failed to back up corrupted pantry data",
			zap.String("backup_key", backupKey),
			zap.Error(err),
		)
		return appErr.WithMetadata("backup_failed", true)
	}
	s.logger.Error("Stored pantry data is corrupted",
		zap.String("key", s.key),
		zap.String("backup_key", backupKey),
		zap.Error(cause),
	)
	return appErr
}

func (s *Store) dispatch(event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(event); err != nil {
		s.logger.Error("Failed to dispatch event", zap.String("event", event.EventName()), zap.Error(err))
	}
}

func recoveryMessage(dropped, defaulted int) string {
	switch {
	case dropped > 0 && defaulted > 0:
		return fmt.Sprintf("Some saved pantry data was damaged: %d unreadable item(s) were removed and %d missing field(s) were filled in.", dropped, defaulted)
	case dropped > 0:
		return fmt.Sprintf("Some saved pantry data was damaged: %d unreadable item(s) were removed.", dropped)
	default:
		return fmt.Sprintf("Saved pantry data was updated: %d missing field(s) were filled in.", defaulted)
	}
}
