package pantry_test

import (
	"slices"
	"testing"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
)

func TestClassify_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		storage  pantry.StorageType
		daysAgo  int
		expected pantry.Tier
	}{
		{"refrigerator fresh", pantry.StorageTypeRefrigerator, 4, pantry.TierNormal},
		{"refrigerator warning", pantry.StorageTypeRefrigerator, 5, pantry.TierWarning},
		{"refrigerator warning upper bound", pantry.StorageTypeRefrigerator, 7, pantry.TierWarning},
		{"refrigerator urgent", pantry.StorageTypeRefrigerator, 8, pantry.TierUrgent},
		{"pantry fresh", pantry.StorageTypePantry, 90, pantry.TierNormal},
		{"pantry warning", pantry.StorageTypePantry, 91, pantry.TierWarning},
		{"pantry urgent", pantry.StorageTypePantry, 181, pantry.TierUrgent},
		{"freezer fresh", pantry.StorageTypeFreezer, 180, pantry.TierNormal},
		{"freezer warning", pantry.StorageTypeFreezer, 365, pantry.TierWarning},
		{"freezer urgent", pantry.StorageTypeFreezer, 366, pantry.TierUrgent},
		{"future date", pantry.StorageTypeRefrigerator, -3, pantry.TierNormal},
		{"unknown storage uses pantry thresholds", pantry.StorageType("cellar"), 91, pantry.TierWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			aging := pantry.Classify(tt.storage, testutils.DaysAgo(tt.daysAgo), testutils.FixedToday)

			// Assert
			assert.True(t, aging.Known)
			assert.Equal(t, tt.daysAgo, aging.DaysOld)
			assert.Equal(t, tt.expected, aging.Tier)
		})
	}
}

func TestClassify_Labels(t *testing.T) {
	assert.Equal(t, "added today", pantry.Classify(pantry.StorageTypePantry, testutils.DaysAgo(0), testutils.FixedToday).Label)
	assert.Equal(t, "1 day old", pantry.Classify(pantry.StorageTypePantry, testutils.DaysAgo(1), testutils.FixedToday).Label)
	assert.Equal(t, "12 days old", pantry.Classify(pantry.StorageTypePantry, testutils.DaysAgo(12), testutils.FixedToday).Label)
}

func TestClassify_UnknownDate(t *testing.T) {
	inputs := map[string]*string{
		"nil":       nil,
		"empty":     pantry.Date(" "),
		"malformed": pantry.Date("15/03/2024"),
	}

	for name, date := range inputs {
		t.Run(name, func(t *testing.T) {
			aging := pantry.Classify(pantry.StorageTypeRefrigerator, date, testutils.FixedToday)

			assert.False(t, aging.Known)
			assert.Equal(t, pantry.TierUnknown, aging.Tier)
			assert.Equal(t, pantry.UnknownAgeLabel, aging.Label)
		})
	}
}

func TestParseDate(t *testing.T) {
	day, ok := pantry.ParseDate(pantry.Date("2024-03-10"), time.UTC)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), day)

	ts, ok := pantry.ParseDate(pantry.Date("2024-03-10T22:30:00+02:00"), time.UTC)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 10, 20, 30, 0, 0, time.UTC), ts)

	_, ok = pantry.ParseDate(pantry.Date("yesterday"), time.UTC)
	assert.False(t, ok)
}

func TestParseDate_DateOnlyUsesClockZone(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*60*60)

	day, ok := pantry.ParseDate(pantry.Date("2026-10-16"), east)

	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 0, 0, east), day)
}

func TestClassify_ClockEastOfUTC(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected int
		label    string
	}{
		{"added today", "2026-10-16", 0, "added today"},
		{"added yesterday", "2026-10-15", 1, "1 day old"},
		{"added a week ago", "2026-10-09", 7, "7 days old"},
	}

	// one hour past local midnight, still the previous day in UTC
	today := time.Date(2026, time.October, 16, 1, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			aging := pantry.Classify(pantry.StorageTypePantry, pantry.Date(tt.date), today)

			// Assert
			assert.True(t, aging.Known)
			assert.Equal(t, tt.expected, aging.DaysOld)
			assert.Equal(t, tt.label, aging.Label)
		})
	}
}

func TestClassify_ClockWestOfUTC(t *testing.T) {
	today := time.Date(2026, time.October, 16, 23, 0, 0, 0, time.FixedZone("UTC-7", -7*60*60))

	aging := pantry.Classify(pantry.StorageTypeRefrigerator, pantry.Date("2026-10-16"), today)

	assert.Equal(t, 0, aging.DaysOld)
	assert.Equal(t, pantry.TierNormal, aging.Tier)
}

func TestDaysBetween_Floors(t *testing.T) {
	from := time.Date(2024, time.March, 14, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, pantry.DaysBetween(from, testutils.FixedToday))
	assert.Equal(t, 1, pantry.DaysBetween(from.Add(-time.Hour), testutils.FixedToday))
	assert.Equal(t, -1, pantry.DaysBetween(testutils.FixedToday.Add(time.Hour), testutils.FixedToday))
}

func TestCompare_UrgencyOrder(t *testing.T) {
	// Arrange
	entries := []pantry.Entry{
		testutils.NewEntryBuilder().WithText("rice").WithStorage(pantry.StorageTypePantry).AddedDaysAgo(10).Build(),
		testutils.NewEntryBuilder().WithText("peas").WithStorage(pantry.StorageTypeFreezer).AddedDaysAgo(400).Build(),
		testutils.NewEntryBuilder().WithText("Yogurt").WithStorage(pantry.StorageTypeRefrigerator).AddedDaysAgo(2).Build(),
		testutils.NewEntryBuilder().WithText("cream").WithStorage(pantry.StorageTypeRefrigerator).AddedDaysAgo(2).Build(),
		testutils.NewEntryBuilder().WithText("milk").WithStorage(pantry.StorageTypeRefrigerator).AddedDaysAgo(6).Build(),
		testutils.NewEntryBuilder().WithText("eggs").WithStorage(pantry.StorageTypeRefrigerator).WithDate("").Build(),
		testutils.NewEntryBuilder().WithText("flour").WithStorage(pantry.StorageTypePantry).AddedDaysAgo(200).Build(),
	}

	// Act
	slices.SortStableFunc(entries, func(a, b pantry.Entry) int {
		return pantry.Compare(a, b, testutils.FixedToday)
	})

	// Assert
	assert.Equal(t, []string{"eggs", "milk", "cream", "Yogurt", "flour", "rice", "peas"}, testutils.Texts(entries))
}

func TestCompareClassified_MatchesCompare(t *testing.T) {
	factory := testutils.NewEntryFactory(7)
	entries := factory.Entries(20)

	for i := range entries {
		for j := range entries {
			a := pantry.Classified{Entry: entries[i], Aging: pantry.Classify(entries[i].StorageType, entries[i].DateAdded, testutils.FixedToday)}
			b := pantry.Classified{Entry: entries[j], Aging: pantry.Classify(entries[j].StorageType, entries[j].DateAdded, testutils.FixedToday)}
			assert.Equal(t, sign(pantry.Compare(entries[i], entries[j], testutils.FixedToday)), sign(pantry.CompareClassified(a, b)))
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
