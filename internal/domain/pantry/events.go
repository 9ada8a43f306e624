package pantry

import (
	"time"

	"github.com/google/uuid"
)

// Domain Events - raised by pantry mutations and consumed by view invalidation and metrics

// EntriesAddedEvent is raised when new entries are appended to a location
type EntriesAddedEvent struct {
	Location Location
	EntryIDs []uuid.UUID
	Skipped  int
	AddedAt  time.Time
}

func (e EntriesAddedEvent) EventName() string {
	return "pantry.entries.added"
}

func (e EntriesAddedEvent) OccurredAt() time.Time {
	return e.AddedAt
}

// EntryUpdatedEvent is raised when an entry is replaced in place
type EntryUpdatedEvent struct {
	Location  Location
	EntryID   uuid.UUID
	Index     int
	UpdatedAt time.Time
}

func (e EntryUpdatedEvent) EventName() string {
	return "pantry.entry.updated"
}

func (e EntryUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// EntryRemovedEvent is raised when an entry is removed from a location
type EntryRemovedEvent struct {
	Location  Location
	EntryID   uuid.UUID
	RemovedAt time.Time
}

func (e EntryRemovedEvent) EventName() string {
	return "pantry.entry.removed"
}

func (e EntryRemovedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}

// LocationClearedEvent is raised when every entry of a location is removed
type LocationClearedEvent struct {
	Location  Location
	Removed   int
	ClearedAt time.Time
}

func (e LocationClearedEvent) EventName() string {
	return "pantry.location.cleared"
}

func (e LocationClearedEvent) OccurredAt() time.Time {
	return e.ClearedAt
}

// EntriesTransferredEvent is raised after a batch move or copy between locations
type EntriesTransferredEvent struct {
	Source        Location
	Destination   Location
	Mode          TransferMode
	Count         int
	TransferredAt time.Time
}

func (e EntriesTransferredEvent) EventName() string {
	return "pantry.entries.transferred"
}

func (e EntriesTransferredEvent) OccurredAt() time.Time {
	return e.TransferredAt
}

// StoreRecoveredEvent is raised when loading repaired, migrated or reset stored data
type StoreRecoveredEvent struct {
	Dropped     int
	Defaulted   int
	Migrated    bool
	Reset       bool
	RecoveredAt time.Time
}

func (e StoreRecoveredEvent) EventName() string {
	return "pantry.store.recovered"
}

func (e StoreRecoveredEvent) OccurredAt() time.Time {
	return e.RecoveredAt
}

// CategorizationCompletedEvent is raised when a categorization call returns
type CategorizationCompletedEvent struct {
	Location    Location
	Provider    string
	Outcome     string
	Items       int
	Groups      int
	Duration    time.Duration
	CompletedAt time.Time
}

func (e CategorizationCompletedEvent) EventName() string {
	return "pantry.categorization.completed"
}

func (e CategorizationCompletedEvent) OccurredAt() time.Time {
	return e.CompletedAt
}
