package pantry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tier is the derived urgency classification of an entry
type Tier string

const (
	TierNormal  Tier = "normal"
	TierWarning Tier = "warning"
	TierUrgent  Tier = "urgent"
	TierUnknown Tier = "unknown"
)

// UnknownAgeLabel is shown for entries without an acquisition date
const UnknownAgeLabel = "unknown age"

// thresholds holds the day counts above which an entry becomes warning or urgent
type thresholds struct {
	warning int
	urgent  int
}

var agingThresholds = map[StorageType]thresholds{
	StorageTypeRefrigerator: {warning: 4, urgent: 7},
	StorageTypeFreezer:      {warning: 180, urgent: 365},
	StorageTypePantry:       {warning: 90, urgent: 180},
}

// storageRank orders storage classes by shelf-life urgency
var storageRank = map[StorageType]int{
	StorageTypeRefrigerator: 0,
	StorageTypePantry:       1,
	StorageTypeFreezer:      2,
}

// Aging is the derived age information for one entry. It never changes stored data.
type Aging struct {
	Known       bool
	DaysOld     int
	Tier        Tier
	Label       string
	UrgencyRank int
}

// Classify computes the aging of an entry stored as storageType since dateAdded
func Classify(storageType StorageType, dateAdded *string, today time.Time) Aging {
	if !storageType.Valid() {
		storageType = StorageTypePantry
	}
	rank := storageRank[storageType]

	added, ok := ParseDate(dateAdded, today.Location())
	if !ok {
		return Aging{Tier: TierUnknown, Label: UnknownAgeLabel, UrgencyRank: rank}
	}

	days := DaysBetween(added, today)
	return Aging{
		Known:       true,
		DaysOld:     days,
		Tier:        tierFor(storageType, days),
		Label:       ageLabel(days),
		UrgencyRank: rank,
	}
}

func tierFor(storageType StorageType, days int) Tier {
	t := agingThresholds[storageType]
	switch {
	case days > t.urgent:
		return TierUrgent
	case days > t.warning:
		return TierWarning
	default:
		return TierNormal
	}
}

func ageLabel(days int) string {
	switch days {
	case 0:
		return "added today"
	case 1:
		return "1 day old"
	default:
		return fmt.Sprintf("%d days old", days)
	}
}

// ParseDate parses an ISO date (YYYY-MM-DD) or RFC 3339 timestamp. A date without a
// time is midnight in loc, so it lines up with a clock reading in the same zone.
func ParseDate(d *string, loc *time.Location) (time.Time, bool) {
	if d == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(*d)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

// DaysBetween returns floor((to - from) / 1 day)
func DaysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// Compare orders entries for display: refrigerator before pantry before freezer,
// unknown dates before known ones, older before newer, then by case-insensitive text.
// It returns a negative number when a sorts before b.
func Compare(a, b Entry, today time.Time) int {
	aa := Classify(a.StorageType, a.DateAdded, today)
	ab := Classify(b.StorageType, b.DateAdded, today)
	return compareClassified(a, aa, b, ab)
}

func compareClassified(a Entry, aa Aging, b Entry, ab Aging) int {
	if aa.UrgencyRank != ab.UrgencyRank {
		return aa.UrgencyRank - ab.UrgencyRank
	}
	if aa.Known != ab.Known {
		if !aa.Known {
			return -1
		}
		return 1
	}
	if aa.Known && aa.DaysOld != ab.DaysOld {
		// older first
		return ab.DaysOld - aa.DaysOld
	}
	return strings.Compare(NormalizeText(a.Text), NormalizeText(b.Text))
}

// Classified pairs an entry with its aging so sorting classifies each entry once
type Classified struct {
	Entry Entry
	Aging Aging
}

// CompareClassified is Compare for entries that were already classified
func CompareClassified(a, b Classified) int {
	return compareClassified(a.Entry, a.Aging, b.Entry, b.Aging)
}
