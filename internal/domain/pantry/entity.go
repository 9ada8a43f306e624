// Package pantry contains the core domain model for multi-location pantry inventory.
// Entries are grouped per storage location and aged according to their storage type.
package pantry

import (
	"strings"

	"github.com/google/uuid"
)

// StorageType determines the aging thresholds applied to an entry
type StorageType string

const (
	StorageTypePantry       StorageType = "pantry"
	StorageTypeRefrigerator StorageType = "refrigerator"
	StorageTypeFreezer      StorageType = "freezer"
)

// StorageTypes lists every supported storage type in display order
var StorageTypes = []StorageType{
	StorageTypeRefrigerator,
	StorageTypePantry,
	StorageTypeFreezer,
}

// Valid reports whether the storage type is one of the known values
func (s StorageType) Valid() bool {
	switch s {
	case StorageTypePantry, StorageTypeRefrigerator, StorageTypeFreezer:
		return true
	}
	return false
}

// ParseStorageType parses a storage type, defaulting to pantry for unknown input
func ParseStorageType(raw string) (StorageType, bool) {
	st := StorageType(strings.ToLower(strings.TrimSpace(raw)))
	if !st.Valid() {
		return StorageTypePantry, false
	}
	return st, true
}

// Location names one physical storage site
type Location string

// Entry is a single item stored at a location
type Entry struct {
	ID          uuid.UUID
	Text        string
	Quantity    string
	DateAdded   *string
	StorageType StorageType
}

// NewEntry creates an entry with a fresh identifier. Text is trimmed.
func NewEntry(text, quantity string, dateAdded *string, storageType StorageType) Entry {
	if !storageType.Valid() {
		storageType = StorageTypePantry
	}
	return Entry{
		ID:          uuid.New(),
		Text:        strings.TrimSpace(text),
		Quantity:    strings.TrimSpace(quantity),
		DateAdded:   copyDate(dateAdded),
		StorageType: storageType,
	}
}

// Key returns the case-insensitive duplicate detection key
func (e Entry) Key() string {
	return NormalizeText(e.Text)
}

// Clone returns a deep copy of the entry
func (e Entry) Clone() Entry {
	c := e
	c.DateAdded = copyDate(e.DateAdded)
	return c
}

// SameValue compares entries ignoring their identifiers
func (e Entry) SameValue(other Entry) bool {
	if e.Text != other.Text || e.Quantity != other.Quantity || e.StorageType != other.StorageType {
		return false
	}
	if e.DateAdded == nil || other.DateAdded == nil {
		return e.DateAdded == nil && other.DateAdded == nil
	}
	return *e.DateAdded == *other.DateAdded
}

// Validate validates the entry
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return ErrEmptyText
	}
	if !e.StorageType.Valid() {
		return ErrInvalidStorageType
	}
	return nil
}

// NormalizeText trims and lower-cases item text for comparisons
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Date returns a pointer to the given date string, or nil for an empty string
func Date(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyDate(d *string) *string {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// State maps every declared location to its ordered entry list
type State map[Location][]Entry

// NewState returns a state with an empty list for each declared location
func NewState(locations []Location) State {
	s := make(State, len(locations))
	for _, loc := range locations {
		s[loc] = []Entry{}
	}
	return s
}

// Has reports whether the location is part of the state
func (s State) Has(loc Location) bool {
	_, ok := s[loc]
	return ok
}

// Entries returns the entry list for a location
func (s State) Entries(loc Location) []Entry {
	return s[loc]
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	c := make(State, len(s))
	for loc, entries := range s {
		list := make([]Entry, len(entries))
		for i, e := range entries {
			list[i] = e.Clone()
		}
		c[loc] = list
	}
	return c
}

// IndexOf finds the position of an entry in a location. Matching is by identifier when
// the target has one, otherwise by the first entry with the same value.
func (s State) IndexOf(loc Location, target Entry) int {
	entries := s[loc]
	if target.ID != uuid.Nil {
		for i, e := range entries {
			if e.ID == target.ID {
				return i
			}
		}
		return -1
	}
	for i, e := range entries {
		if e.SameValue(target) {
			return i
		}
	}
	return -1
}

// ContainsText reports whether a location already holds an entry with the same
// case-insensitive trimmed text
func (s State) ContainsText(loc Location, text string) bool {
	key := NormalizeText(text)
	for _, e := range s[loc] {
		if e.Key() == key {
			return true
		}
	}
	return false
}
