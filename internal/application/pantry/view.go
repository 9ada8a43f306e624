package pantry

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
)

// deriveView attaches each entry's raw-list position, filters by search term and
// storage facet, then sorts by urgency. Positions are pinned before filtering so
// selection and transfer keep targeting the persisted list.
func deriveView(entries []pantry.Entry, query pantry.ViewQuery, today time.Time) []inbound.ViewEntry {
	search := strings.ToLower(strings.TrimSpace(query.Search))

	rows := make([]inbound.ViewEntry, 0, len(entries))
	for i, e := range entries {
		if search != "" && !strings.Contains(strings.ToLower(e.Text), search) {
			continue
		}
		if !query.Storage.Matches(e.StorageType) {
			continue
		}
		rows = append(rows, inbound.ViewEntry{
			Entry:         e.Clone(),
			OriginalIndex: i,
			Aging:         pantry.Classify(e.StorageType, e.DateAdded, today),
		})
	}

	slices.SortStableFunc(rows, func(a, b inbound.ViewEntry) int {
		if c := pantry.CompareClassified(
			pantry.Classified{Entry: a.Entry, Aging: a.Aging},
			pantry.Classified{Entry: b.Entry, Aging: b.Aging},
		); c != 0 {
			return c
		}
		return a.OriginalIndex - b.OriginalIndex
	})
	return rows
}

// DeriveView returns the filtered, sorted view of a location. Unknown locations yield
// an empty view.
func (s *Service) DeriveView(ctx context.Context, location pantry.Location, query pantry.ViewQuery) ([]inbound.ViewEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return deriveView(s.state[location], query.Normalize(), s.now()), nil
}

// ActiveView returns the location and filter currently shown
func (s *Service) ActiveView() inbound.ActiveView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SwitchLocation makes location active. The previous location's selection is cleared
// and categorized views of both locations are dropped. It reports false for unknown
// locations.
func (s *Service) SwitchLocation(location pantry.Location) bool {
	if !slices.Contains(s.store.Locations(), location) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Location == location {
		return true
	}
	previous := s.active.Location
	s.invalidateLocked(previous, true)
	s.invalidateLocked(location, false)
	s.active.Location = location
	return true
}

// SetFilter changes the search term and storage facet of the active view. A changed
// filter drops the active location's categorized view.
func (s *Service) SetFilter(query pantry.ViewQuery) {
	query = query.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Query == query {
		return
	}
	s.active.Query = query
	delete(s.overlays, s.active.Location)
}

// ToggleSelection adds or removes a raw-list index from a location's selection and
// returns the resulting selection. Out-of-range indices are ignored.
func (s *Service) ToggleSelection(location pantry.Location, index int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.state[location]
	if !ok || index < 0 || index >= len(entries) {
		return sortedIndices(s.selections[location])
	}
	set := s.selections[location]
	if set == nil {
		set = make(map[int]struct{})
		s.selections[location] = set
	}
	if _, selected := set[index]; selected {
		delete(set, index)
	} else {
		set[index] = struct{}{}
	}
	return sortedIndices(set)
}

// SelectAll selects every entry of the active filtered view
func (s *Service) SelectAll(ctx context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	loc := s.active.Location
	set := make(map[int]struct{})
	for _, row := range deriveView(s.state[loc], s.active.Query, s.now()) {
		set[row.OriginalIndex] = struct{}{}
	}
	s.selections[loc] = set
	return sortedIndices(set), nil
}

// ClearSelection empties a location's selection
func (s *Service) ClearSelection(location pantry.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, location)
}

// Selection returns a location's selected raw-list indices in ascending order
func (s *Service) Selection(location pantry.Location) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIndices(s.selections[location])
}

// SelectedEntries returns the active location's selected entries, for example to build
// a recipe prompt from them
func (s *Service) SelectedEntries(ctx context.Context) ([]pantry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	entries := s.state[s.active.Location]
	var out []pantry.Entry
	for _, i := range sortedIndices(s.selections[s.active.Location]) {
		if i < len(entries) {
			out = append(out, entries[i].Clone())
		}
	}
	return out, nil
}
