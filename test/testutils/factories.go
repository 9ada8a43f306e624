// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// FixedToday is the reference day used by tests that depend on aging
var FixedToday = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// FixedClock returns a clock that always reports FixedToday
func FixedClock() func() time.Time {
	return func() time.Time { return FixedToday }
}

// DaysAgo returns the ISO date n days before FixedToday
func DaysAgo(n int) *string {
	d := FixedToday.AddDate(0, 0, -n).Format(time.DateOnly)
	return &d
}

// EntryFactory provides methods to create test entries
type EntryFactory struct {
	faker *gofakeit.Faker
}

// NewEntryFactory creates a new entry factory with seeded faker
func NewEntryFactory(seed int64) *EntryFactory {
	return &EntryFactory{
		faker: gofakeit.New(seed),
	}
}

// Entry creates a random entry with a known date
func (f *EntryFactory) Entry() pantry.Entry {
	return NewEntryBuilder().
		WithText(f.faker.Fruit()).
		WithQuantity(f.faker.Numerify("# db")).
		WithStorage(pantry.StorageTypes[f.faker.Number(0, len(pantry.StorageTypes)-1)]).
		AddedDaysAgo(f.faker.Number(0, 400)).
		Build()
}

// Entries creates n random entries with distinct texts
func (f *EntryFactory) Entries(n int) []pantry.Entry {
	out := make([]pantry.Entry, 0, n)
	seen := make(map[string]bool, n)
	for len(out) < n {
		e := f.Entry()
		if seen[e.Key()] {
			e.Text = e.Text + " " + f.faker.LetterN(4)
		}
		seen[e.Key()] = true
		out = append(out, e)
	}
	return out
}

// Items returns n distinct ingredient names
func (f *EntryFactory) Items(n int) []string {
	out := make([]string, 0, n)
	for _, e := range f.Entries(n) {
		out = append(out, e.Text)
	}
	return out
}

// EntryBuilder provides a fluent interface for building test entries
type EntryBuilder struct {
	entry pantry.Entry
}

// NewEntryBuilder creates a new entry builder with default values
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{entry: pantry.Entry{
		ID:          uuid.New(),
		Text:        "milk",
		StorageType: pantry.StorageTypePantry,
	}}
}

// WithID sets the identifier
func (b *EntryBuilder) WithID(id uuid.UUID) *EntryBuilder {
	b.entry.ID = id
	return b
}

// WithText sets the item text
func (b *EntryBuilder) WithText(text string) *EntryBuilder {
	b.entry.Text = text
	return b
}

// WithQuantity sets the quantity
func (b *EntryBuilder) WithQuantity(quantity string) *EntryBuilder {
	b.entry.Quantity = quantity
	return b
}

// WithStorage sets the storage type
func (b *EntryBuilder) WithStorage(st pantry.StorageType) *EntryBuilder {
	b.entry.StorageType = st
	return b
}

// WithDate sets the acquisition date, "" meaning unknown
func (b *EntryBuilder) WithDate(date string) *EntryBuilder {
	b.entry.DateAdded = pantry.Date(date)
	return b
}

// AddedDaysAgo sets the acquisition date relative to FixedToday
func (b *EntryBuilder) AddedDaysAgo(n int) *EntryBuilder {
	b.entry.DateAdded = DaysAgo(n)
	return b
}

// Build returns the entry
func (b *EntryBuilder) Build() pantry.Entry {
	return b.entry.Clone()
}

// StateBuilder builds a pantry state for the given locations
type StateBuilder struct {
	state pantry.State
}

// NewStateBuilder creates a state with an empty list per location
func NewStateBuilder(locations ...pantry.Location) *StateBuilder {
	return &StateBuilder{state: pantry.NewState(locations)}
}

// With appends entries to a location
func (b *StateBuilder) With(loc pantry.Location, entries ...pantry.Entry) *StateBuilder {
	b.state[loc] = append(b.state[loc], entries...)
	return b
}

// Build returns a copy of the state
func (b *StateBuilder) Build() pantry.State {
	return b.state.Clone()
}

// Texts returns the texts of entries in order
func Texts(entries []pantry.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

// Cleanup provides cleanup utilities for tests
type Cleanup struct {
	funcs []func()
}

// NewCleanup creates a new cleanup helper
func NewCleanup() *Cleanup {
	return &Cleanup{
		funcs: make([]func(), 0),
	}
}

// Add adds a cleanup function
func (c *Cleanup) Add(f func()) {
	c.funcs = append(c.funcs, f)
}

// Execute runs all cleanup functions in reverse order
func (c *Cleanup) Execute() {
	for i := len(c.funcs) - 1; i >= 0; i-- {
		c.funcs[i]()
	}
}
