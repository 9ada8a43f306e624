// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
)

// PantryService defines the use cases for pantry management.
// HTTP handlers and other driving adapters depend on this port.
type PantryService interface {
	// Locations returns the declared locations in declaration order
	Locations() []pantry.Location

	// Commands - read-modify-write operations against the durable store
	AddItems(ctx context.Context, cmd AddItemsCommand) (pantry.State, error)
	UpdateItem(ctx context.Context, location pantry.Location, original, updated pantry.Entry) (pantry.State, error)
	UpdateItemAt(ctx context.Context, location pantry.Location, index int, updated pantry.Entry) (pantry.State, error)
	RemoveItem(ctx context.Context, location pantry.Location, entry pantry.Entry) (pantry.State, error)
	RemoveItemAt(ctx context.Context, location pantry.Location, index int) (pantry.State, error)
	ClearAll(ctx context.Context, location pantry.Location) (pantry.State, error)
	Transfer(ctx context.Context, req TransferRequest) (pantry.State, error)
	TransferSelected(ctx context.Context, destination pantry.Location, mode pantry.TransferMode) (pantry.State, error)

	// Queries
	Snapshot(ctx context.Context) (pantry.State, error)
	DeriveView(ctx context.Context, location pantry.Location, query pantry.ViewQuery) ([]ViewEntry, error)

	// Session state: active location, filter and selection
	ActiveView() ActiveView
	SwitchLocation(location pantry.Location) bool
	SetFilter(query pantry.ViewQuery)
	ToggleSelection(location pantry.Location, index int) []int
	SelectAll(ctx context.Context) ([]int, error)
	ClearSelection(location pantry.Location)
	Selection(location pantry.Location) []int
	SelectedEntries(ctx context.Context) ([]pantry.Entry, error)

	// Categorization overlay
	CategorizeVisible(ctx context.Context) (*CategorizedView, []pantry.Notification, error)
	CategorizedView(location pantry.Location) *CategorizedView
	ToggleCategory(location pantry.Location, category string) bool
	ClearCategorization(location pantry.Location)
}

// AddItemsCommand adds comma separated items to a location
type AddItemsCommand struct {
	RawText     string
	Location    pantry.Location
	DateAdded   *string
	StorageType pantry.StorageType
}

// TransferRequest moves or copies entries identified by their raw-list index
type TransferRequest struct {
	Source      pantry.Location
	Destination pantry.Location
	Indices     []int
	Mode        pantry.TransferMode
}

// ViewEntry is one row of a derived view. OriginalIndex is the entry's position in the
// persisted list, pinned before filtering and sorting.
type ViewEntry struct {
	Entry         pantry.Entry
	OriginalIndex int
	Aging         pantry.Aging
}

// ActiveView is the location and filter the user is currently looking at
type ActiveView struct {
	Location pantry.Location
	Query    pantry.ViewQuery
}

// CategoryGroup is one display bucket of the categorized view
type CategoryGroup struct {
	Label    string
	Expanded bool
	Entries  []ViewEntry
}

// CategorizedView is an ephemeral AI-derived grouping of visible entries
type CategorizedView struct {
	Location pantry.Location
	Query    pantry.ViewQuery
	Groups   []CategoryGroup
	// Omitted counts visible entries the categorizer did not return
	Omitted int
}

// Group returns the group with the given label
func (v *CategorizedView) Group(label string) (*CategoryGroup, bool) {
	for i := range v.Groups {
		if v.Groups[i].Label == label {
			return &v.Groups[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers cannot mutate cached overlays
func (v *CategorizedView) Clone() *CategorizedView {
	if v == nil {
		return nil
	}
	c := *v
	c.Groups = make([]CategoryGroup, len(v.Groups))
	for i, g := range v.Groups {
		g.Entries = append([]ViewEntry(nil), g.Entries...)
		c.Groups[i] = g
	}
	return &c
}
