package pantry

// Value Objects - immutable descriptions used across the pantry domain

// TransferMode selects whether a transfer removes entries from the source
type TransferMode string

const (
	TransferModeMove TransferMode = "move"
	TransferModeCopy TransferMode = "copy"
)

// Valid reports whether the mode is known
func (m TransferMode) Valid() bool {
	return m == TransferModeMove || m == TransferModeCopy
}

// NotificationLevel grades a non-fatal outcome
type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationWarning NotificationLevel = "warning"
)

// NotificationCode identifies what a notification is about
type NotificationCode string

const (
	NoticeLegacyMigrated        NotificationCode = "legacy_migrated"
	NoticeEntriesRecovered      NotificationCode = "entries_recovered"
	NoticeInvalidShape          NotificationCode = "invalid_shape"
	NoticeCategorizationFailed  NotificationCode = "categorization_failed"
	NoticeCategorizationPartial NotificationCode = "categorization_partial"
	NoticeCategorizationStale   NotificationCode = "categorization_stale"
	NoticeCategorizationSkipped NotificationCode = "categorization_skipped"
)

// Notification is an informational message for the user that does not abort the operation
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Code    NotificationCode  `json:"code"`
	Message string            `json:"message"`
}

// StorageFilter is the storage-type facet of a view query. The zero value and "all"
// match every entry.
type StorageFilter string

// StorageFilterAll matches every storage type
const StorageFilterAll StorageFilter = "all"

// Matches reports whether an entry passes the facet
func (f StorageFilter) Matches(st StorageType) bool {
	if f == "" || f == StorageFilterAll {
		return true
	}
	return StorageType(f) == st
}

// Valid reports whether the facet is "all" or a known storage type
func (f StorageFilter) Valid() bool {
	return f == "" || f == StorageFilterAll || StorageType(f).Valid()
}

// ViewQuery describes the user's search and filter selection for a location
type ViewQuery struct {
	Search  string
	Storage StorageFilter
}

// Normalize maps equivalent queries to one representation
func (q ViewQuery) Normalize() ViewQuery {
	if q.Storage == "" {
		q.Storage = StorageFilterAll
	}
	return q
}
