package pantry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// entryRecord is the persisted JSON shape of an entry. Field order is fixed so that
// encoding is deterministic.
type entryRecord struct {
	ID          string      `json:"id"`
	Text        string      `json:"text"`
	Quantity    string      `json:"quantity,omitempty"`
	DateAdded   *string     `json:"dateAdded"`
	StorageType StorageType `json:"storageType"`
}

// WarningKind classifies what the decoder did to a value it could not accept as-is
type WarningKind string

const (
	WarningDropped   WarningKind = "dropped"
	WarningDefaulted WarningKind = "defaulted"
	WarningIgnored   WarningKind = "ignored"
)

// Warning describes one recovery action taken while decoding
type Warning struct {
	Kind     WarningKind
	Location Location
	Index    int
	Reason   string
}

func (w Warning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("%s %s: %s", w.Kind, w.Location, w.Reason)
	}
	return fmt.Sprintf("%s %s[%d]: %s", w.Kind, w.Location, w.Index, w.Reason)
}

// DecodeResult is the outcome of decoding a persisted blob
type DecodeResult struct {
	State    State
	Warnings []Warning
	// Migrated is set when the blob used the legacy single-location array format
	Migrated bool
	// InvalidShape is set when the blob parsed but was neither a mapping nor an array
	InvalidShape bool
}

// NeedsRewrite reports whether the decoded state differs from what was stored
func (r DecodeResult) NeedsRewrite() bool {
	if r.Migrated {
		return true
	}
	for _, w := range r.Warnings {
		if w.Kind != WarningIgnored {
			return true
		}
	}
	return false
}

// Dropped counts entries removed during decoding
func (r DecodeResult) Dropped() int {
	return r.count(WarningDropped)
}

// Defaulted counts fields filled in during decoding
func (r DecodeResult) Defaulted() int {
	return r.count(WarningDefaulted)
}

func (r DecodeResult) count(kind WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Decode validates a persisted blob against the pantry schema. Only wholly unparseable
// input is an error; partial corruption is repaired and reported as warnings.
func Decode(raw []byte, locations []Location) (DecodeResult, error) {
	if len(locations) == 0 {
		return DecodeResult{}, ErrNoLocations
	}
	result := DecodeResult{State: NewState(locations)}

	var top json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrUnparseableStore, err)
	}

	trimmed := bytes.TrimSpace(top)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return DecodeResult{}, fmt.Errorf("%w: %v", ErrUnparseableStore, err)
		}
		first := locations[0]
		result.State[first] = decodeEntries(first, items, &result.Warnings)
		result.Migrated = true
	case len(trimmed) > 0 && trimmed[0] == '{':
		var byLocation map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &byLocation); err != nil {
			return DecodeResult{}, fmt.Errorf("%w: %v", ErrUnparseableStore, err)
		}
		declared := make(map[Location]bool, len(locations))
		for _, loc := range locations {
			declared[loc] = true
		}
		for key := range byLocation {
			if !declared[Location(key)] {
				result.Warnings = append(result.Warnings, Warning{
					Kind: WarningIgnored, Location: Location(key), Index: -1,
					Reason: "location is not declared",
				})
			}
		}
		for _, loc := range locations {
			value, ok := byLocation[string(loc)]
			if !ok {
				continue
			}
			var items []json.RawMessage
			if !isJSONArray(value) || json.Unmarshal(value, &items) != nil {
				result.Warnings = append(result.Warnings, Warning{
					Kind: WarningDropped, Location: loc, Index: -1,
					Reason: "location value is not a list",
				})
				continue
			}
			result.State[loc] = decodeEntries(loc, items, &result.Warnings)
		}
	default:
		result.InvalidShape = true
	}

	return result, nil
}

func isJSONArray(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeEntries(loc Location, items []json.RawMessage, warnings *[]Warning) []Entry {
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entry, notes, ok := decodeEntry(item)
		for _, reason := range notes {
			kind := WarningDefaulted
			if !ok {
				kind = WarningDropped
			}
			*warnings = append(*warnings, Warning{Kind: kind, Location: loc, Index: i, Reason: reason})
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// decodeEntry applies the entry shape check. When ok is false the notes hold the reason
// the entry was dropped; otherwise they list the fields that were defaulted.
func decodeEntry(item json.RawMessage) (Entry, []string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return Entry{}, []string{"entry is not an object"}, false
	}

	var text string
	rawText, ok := fields["text"]
	if !ok {
		return Entry{}, []string{"missing text"}, false
	}
	if err := json.Unmarshal(rawText, &text); err != nil {
		return Entry{}, []string{"text is not a string"}, false
	}
	if strings.TrimSpace(text) == "" {
		return Entry{}, []string{"empty text"}, false
	}

	entry := Entry{Text: text}
	var notes []string

	if rawDate, ok := fields["dateAdded"]; ok {
		if !isJSONNull(rawDate) {
			var date string
			if err := json.Unmarshal(rawDate, &date); err != nil {
				return Entry{}, []string{"dateAdded is neither a string nor null"}, false
			}
			entry.DateAdded = &date
		}
	} else {
		notes = append(notes, "missing dateAdded, set to unknown")
	}

	entry.StorageType = StorageTypePantry
	if rawType, ok := fields["storageType"]; ok {
		var st string
		if err := json.Unmarshal(rawType, &st); err != nil || !StorageType(st).Valid() {
			notes = append(notes, "invalid storageType, set to pantry")
		} else {
			entry.StorageType = StorageType(st)
		}
	} else {
		notes = append(notes, "missing storageType, set to pantry")
	}

	if rawQty, ok := fields["quantity"]; ok && !isJSONNull(rawQty) {
		var qty string
		if err := json.Unmarshal(rawQty, &qty); err != nil {
			notes = append(notes, "quantity is not a string, discarded")
		} else {
			entry.Quantity = qty
		}
	}

	var id string
	if rawID, ok := fields["id"]; ok && json.Unmarshal(rawID, &id) == nil {
		if parsed, err := uuid.Parse(id); err == nil {
			entry.ID = parsed
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
		notes = append(notes, "missing id, assigned")
	}

	return entry, notes, true
}

func isJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// Encode serializes the declared locations of a state. Output is deterministic:
// locations are written in sorted key order and entry fields in a fixed order.
func Encode(state State, locations []Location) ([]byte, error) {
	out := make(map[string][]entryRecord, len(locations))
	for _, loc := range locations {
		entries := state[loc]
		records := make([]entryRecord, len(entries))
		for i, e := range entries {
			records[i] = entryRecord{
				ID:          e.ID.String(),
				Text:        e.Text,
				Quantity:    e.Quantity,
				DateAdded:   e.DateAdded,
				StorageType: e.StorageType,
			}
		}
		out[string(loc)] = records
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pantry state: %w", err)
	}
	return data, nil
}
