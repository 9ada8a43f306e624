package pantry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service implements the pantry use cases for one user session. All operations are
// serialized by a single mutex; only the categorization call runs outside of it.
type Service struct {
	store       *Store
	categorizer outbound.Categorizer
	events      shared.EventDispatcher
	logger      *zap.Logger
	tracer      trace.Tracer
	now         func() time.Time

	mu         sync.Mutex
	state      pantry.State
	loaded     bool
	active     inbound.ActiveView
	selections map[pantry.Location]map[int]struct{}
	overlays   map[pantry.Location]*inbound.CategorizedView
	pending    map[pantry.Location]bool
	generation map[pantry.Location]uint64
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used for aging and event timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTracer overrides the tracer used for categorization spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// NewService creates a new pantry service. The first declared location starts active.
func NewService(
	store *Store,
	categorizer outbound.Categorizer,
	events shared.EventDispatcher,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:       store,
		categorizer: categorizer,
		events:      events,
		logger:      logger.Named("pantry-service"),
		tracer:      otel.Tracer("github.com/alchemorsel/pantry/internal/application/pantry"),
		now:         time.Now,
		active: inbound.ActiveView{
			Location: store.Locations()[0],
			Query:    pantry.ViewQuery{}.Normalize(),
		},
		selections: make(map[pantry.Location]map[int]struct{}),
		overlays:   make(map[pantry.Location]*inbound.CategorizedView),
		pending:    make(map[pantry.Location]bool),
		generation: make(map[pantry.Location]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ inbound.PantryService = (*Service)(nil)

// Open loads the persisted state and returns any recovery notifications
func (s *Service) Open(ctx context.Context) ([]pantry.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Reload discards the in-memory snapshot and every derived view, then loads again
func (s *Service) Reload(ctx context.Context) ([]pantry.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	for _, loc := range s.store.Locations() {
		s.invalidateLocked(loc, true)
	}
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) ([]pantry.Notification, error) {
	state, notes, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.state = state
	s.loaded = true
	for _, n := range notes {
		s.logger.Info("Pantry load notification", zap.String("code", string(n.Code)), zap.String("message", n.Message))
	}
	return notes, nil
}

func (s *Service) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	_, err := s.loadLocked(ctx)
	return err
}

// Locations returns the declared locations in declaration order
func (s *Service) Locations() []pantry.Location {
	return s.store.Locations()
}

// Snapshot returns a copy of the current state
func (s *Service) Snapshot(ctx context.Context) (pantry.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return s.state.Clone(), nil
}

// mutation is what a mutation function reports back to mutate
type mutation struct {
	events []shared.DomainEvent
	// touched locations lose their categorized view
	touched []pantry.Location
	// reindexed locations also lose their selection because positions shifted
	reindexed []pantry.Location
}

// mutate runs fn against a copy of the state and persists the result. When fn reports
// no change nothing is written and the current state is returned, but locations fn
// reports as touched still lose their categorized view. The in-memory snapshot is only
// replaced after a successful save.
func (s *Service) mutate(ctx context.Context, op string, fn func(next pantry.State) (mutation, bool)) (pantry.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	next := s.state.Clone()
	m, changed := fn(next)
	if !changed {
		s.logger.Debug("Pantry operation was a no-op", zap.String("operation", op))
		for _, loc := range m.touched {
			s.invalidateLocked(loc, false)
		}
		return s.state.Clone(), nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("Failed to persist pantry operation", zap.String("operation", op), zap.Error(err))
		return nil, err
	}
	s.state = next

	for _, loc := range m.touched {
		s.invalidateLocked(loc, false)
	}
	for _, loc := range m.reindexed {
		delete(s.selections, loc)
	}
	for _, event := range m.events {
		s.dispatch(event)
	}

	return next.Clone(), nil
}

// invalidateLocked drops the categorized view of a location and advances its
// generation so in-flight categorization results are discarded
func (s *Service) invalidateLocked(loc pantry.Location, clearSelection bool) {
	delete(s.overlays, loc)
	s.generation[loc]++
	if clearSelection {
		delete(s.selections, loc)
	}
}

func (s *Service) dispatch(event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(event); err != nil {
		s.logger.Error("Failed to dispatch event", zap.String("event", event.EventName()), zap.Error(err))
	}
}

// AddItems splits the raw text on commas and appends every new item to the location.
// Items already present (case-insensitive, trimmed) are skipped without error.
func (s *Service) AddItems(ctx context.Context, cmd inbound.AddItemsCommand) (pantry.State, error) {
	storageType := cmd.StorageType
	if !storageType.Valid() {
		storageType = pantry.StorageTypePantry
	}

	return s.mutate(ctx, "add_items", func(next pantry.State) (mutation, bool) {
		if !next.Has(cmd.Location) {
			return mutation{}, false
		}

		seen := make(map[string]bool)
		for _, e := range next[cmd.Location] {
			seen[e.Key()] = true
		}

		var added []pantry.Entry
		skipped := 0
		for _, piece := range strings.Split(cmd.RawText, ",") {
			text := strings.TrimSpace(piece)
			if text == "" {
				continue
			}
			key := pantry.NormalizeText(text)
			if seen[key] {
				skipped++
				continue
			}
			seen[key] = true
			added = append(added, pantry.NewEntry(text, "", cmd.DateAdded, storageType))
		}
		if len(added) == 0 {
			return mutation{}, false
		}

		next[cmd.Location] = append(next[cmd.Location], added...)

		ids := make([]uuid.UUID, len(added))
		for i, e := range added {
			ids[i] = e.ID
		}
		s.logger.Info("Added pantry items",
			zap.String("location", string(cmd.Location)),
			zap.Int("added", len(added)),
			zap.Int("skipped", skipped),
		)
		return mutation{
			events: []shared.DomainEvent{pantry.EntriesAddedEvent{
				Location: cmd.Location,
				EntryIDs: ids,
				Skipped:  skipped,
				AddedAt:  s.now(),
			}},
			touched: []pantry.Location{cmd.Location},
		}, true
	})
}

// UpdateItem replaces the entry matching original (by identifier, or by value when
// original has none) in place
func (s *Service) UpdateItem(ctx context.Context, location pantry.Location, original, updated pantry.Entry) (pantry.State, error) {
	return s.mutate(ctx, "update_item", func(next pantry.State) (mutation, bool) {
		return s.updateAt(next, location, next.IndexOf(location, original), updated)
	})
}

// UpdateItemAt replaces the entry at index in place
func (s *Service) UpdateItemAt(ctx context.Context, location pantry.Location, index int, updated pantry.Entry) (pantry.State, error) {
	return s.mutate(ctx, "update_item", func(next pantry.State) (mutation, bool) {
		return s.updateAt(next, location, index, updated)
	})
}

func (s *Service) updateAt(next pantry.State, location pantry.Location, index int, updated pantry.Entry) (mutation, bool) {
	entries, ok := next[location]
	if !ok || index < 0 || index >= len(entries) {
		return mutation{}, false
	}
	text := strings.TrimSpace(updated.Text)
	if text == "" {
		return mutation{}, false
	}

	current := entries[index]
	replacement := pantry.Entry{
		ID:          current.ID,
		Text:        text,
		Quantity:    strings.TrimSpace(updated.Quantity),
		DateAdded:   updated.Clone().DateAdded,
		StorageType: updated.StorageType,
	}
	if !replacement.StorageType.Valid() {
		replacement.StorageType = current.StorageType
	}
	if replacement.SameValue(current) {
		// an edit that matched an entry still resets the categorized view
		return mutation{touched: []pantry.Location{location}}, false
	}
	entries[index] = replacement

	return mutation{
		events: []shared.DomainEvent{pantry.EntryUpdatedEvent{
			Location:  location,
			EntryID:   current.ID,
			Index:     index,
			UpdatedAt: s.now(),
		}},
		touched: []pantry.Location{location},
	}, true
}

// RemoveItem removes the first entry matching entry from the location
func (s *Service) RemoveItem(ctx context.Context, location pantry.Location, entry pantry.Entry) (pantry.State, error) {
	return s.mutate(ctx, "remove_item", func(next pantry.State) (mutation, bool) {
		return s.removeAt(next, location, next.IndexOf(location, entry))
	})
}

// RemoveItemAt removes the entry at index from the location
func (s *Service) RemoveItemAt(ctx context.Context, location pantry.Location, index int) (pantry.State, error) {
	return s.mutate(ctx, "remove_item", func(next pantry.State) (mutation, bool) {
		return s.removeAt(next, location, index)
	})
}

func (s *Service) removeAt(next pantry.State, location pantry.Location, index int) (mutation, bool) {
	entries, ok := next[location]
	if !ok || index < 0 || index >= len(entries) {
		return mutation{}, false
	}
	removed := entries[index]
	next[location] = append(entries[:index:index], entries[index+1:]...)

	return mutation{
		events: []shared.DomainEvent{pantry.EntryRemovedEvent{
			Location:  location,
			EntryID:   removed.ID,
			RemovedAt: s.now(),
		}},
		touched:   []pantry.Location{location},
		reindexed: []pantry.Location{location},
	}, true
}

// ClearAll empties the location
func (s *Service) ClearAll(ctx context.Context, location pantry.Location) (pantry.State, error) {
	return s.mutate(ctx, "clear_all", func(next pantry.State) (mutation, bool) {
		entries, ok := next[location]
		if !ok || len(entries) == 0 {
			return mutation{}, false
		}
		next[location] = []pantry.Entry{}

		s.logger.Info("Cleared pantry location",
			zap.String("location", string(location)),
			zap.Int("removed", len(entries)),
		)
		return mutation{
			events: []shared.DomainEvent{pantry.LocationClearedEvent{
				Location:  location,
				Removed:   len(entries),
				ClearedAt: s.now(),
			}},
			touched:   []pantry.Location{location},
			reindexed: []pantry.Location{location},
		}, true
	})
}

// sortedIndices returns the members of a selection set in ascending order
func sortedIndices(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
