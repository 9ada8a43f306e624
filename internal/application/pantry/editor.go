package pantry

import "github.com/alchemorsel/pantry/internal/domain/pantry"

// Editor holds the editable copy of one entry shown in an item row. Updates pushed
// from the store are applied only while no local edit is in progress, so a refresh
// never overwrites what the user is typing.
type Editor struct {
	current pantry.Entry
	draft   pantry.Entry
	editing bool
}

// NewEditor creates an idle editor for an entry
func NewEditor(entry pantry.Entry) *Editor {
	return &Editor{current: entry.Clone(), draft: entry.Clone()}
}

// Sync applies an externally updated entry unless an edit is in progress. It reports
// whether the update was applied.
func (e *Editor) Sync(external pantry.Entry) bool {
	if e.editing {
		return false
	}
	e.current = external.Clone()
	e.draft = external.Clone()
	return true
}

// Begin starts a local edit from the current value
func (e *Editor) Begin() {
	if e.editing {
		return
	}
	e.draft = e.current.Clone()
	e.editing = true
}

// Change applies fn to the draft, starting an edit if needed
func (e *Editor) Change(fn func(draft *pantry.Entry)) {
	e.Begin()
	fn(&e.draft)
}

// Commit ends the edit and returns the original and updated entries for UpdateItem.
// ok is false when no edit was in progress.
func (e *Editor) Commit() (original, updated pantry.Entry, ok bool) {
	if !e.editing {
		return pantry.Entry{}, pantry.Entry{}, false
	}
	original = e.current.Clone()
	updated = e.draft.Clone()
	updated.ID = original.ID
	e.current = updated.Clone()
	e.editing = false
	return original, updated, true
}

// Cancel discards the draft
func (e *Editor) Cancel() {
	e.draft = e.current.Clone()
	e.editing = false
}

// Editing reports whether a local edit is in progress
func (e *Editor) Editing() bool {
	return e.editing
}

// Current returns the last committed or synced value
func (e *Editor) Current() pantry.Entry {
	return e.current.Clone()
}

// Draft returns the value being edited
func (e *Editor) Draft() pantry.Entry {
	return e.draft.Clone()
}
