package pantry_test

import (
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// EntryTestSuite provides a test suite for pantry entries and state
type EntryTestSuite struct {
	suite.Suite
	factory *testutils.EntryFactory
}

// SetupSuite initializes the test suite
func (suite *EntryTestSuite) SetupSuite() {
	suite.factory = testutils.NewEntryFactory(42)
}

func (suite *EntryTestSuite) TestNewEntry() {
	suite.Run("TrimsTextAndAssignsID", func() {
		// Act
		entry := pantry.NewEntry("  Olive Oil ", " 1 bottle ", pantry.Date("2024-01-02"), pantry.StorageTypePantry)

		// Assert
		assert.NotEqual(suite.T(), uuid.Nil, entry.ID)
		assert.Equal(suite.T(), "Olive Oil", entry.Text)
		assert.Equal(suite.T(), "1 bottle", entry.Quantity)
		require.NotNil(suite.T(), entry.DateAdded)
		assert.Equal(suite.T(), "2024-01-02", *entry.DateAdded)
	})

	suite.Run("InvalidStorageDefaultsToPantry", func() {
		entry := pantry.NewEntry("salt", "", nil, pantry.StorageType("garage"))

		assert.Equal(suite.T(), pantry.StorageTypePantry, entry.StorageType)
		assert.Nil(suite.T(), entry.DateAdded)
	})

	suite.Run("DateIsCopied", func() {
		date := "2024-01-02"
		entry := pantry.NewEntry("salt", "", &date, pantry.StorageTypePantry)
		date = "1999-01-01"

		assert.Equal(suite.T(), "2024-01-02", *entry.DateAdded)
	})
}

func (suite *EntryTestSuite) TestValidate() {
	tests := []struct {
		name     string
		entry    pantry.Entry
		expected error
	}{
		{"valid", testutils.NewEntryBuilder().Build(), nil},
		{"blank text", testutils.NewEntryBuilder().WithText("   ").Build(), pantry.ErrEmptyText},
		{"bad storage", testutils.NewEntryBuilder().WithStorage("shed").Build(), pantry.ErrInvalidStorageType},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			assert.Equal(suite.T(), tt.expected, tt.entry.Validate())
		})
	}
}

func (suite *EntryTestSuite) TestParseStorageType() {
	st, ok := pantry.ParseStorageType(" Freezer ")
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), pantry.StorageTypeFreezer, st)

	st, ok = pantry.ParseStorageType("attic")
	assert.False(suite.T(), ok)
	assert.Equal(suite.T(), pantry.StorageTypePantry, st)
}

func (suite *EntryTestSuite) TestCloneIsDeep() {
	// Arrange
	original := testutils.NewStateBuilder("home", "office").
		With("home", suite.factory.Entries(3)...).
		Build()

	// Act
	clone := original.Clone()
	*clone["home"][0].DateAdded = "1970-01-01"
	clone["home"][1].Text = "changed"
	clone["office"] = append(clone["office"], testutils.NewEntryBuilder().Build())

	// Assert
	assert.NotEqual(suite.T(), "1970-01-01", *original["home"][0].DateAdded)
	assert.NotEqual(suite.T(), "changed", original["home"][1].Text)
	assert.Empty(suite.T(), original["office"])
}

func (suite *EntryTestSuite) TestSameValue() {
	a := testutils.NewEntryBuilder().WithText("milk").WithDate("2024-03-01").Build()
	b := testutils.NewEntryBuilder().WithText("milk").WithDate("2024-03-01").Build()
	c := testutils.NewEntryBuilder().WithText("milk").WithDate("").Build()

	assert.True(suite.T(), a.SameValue(b))
	assert.False(suite.T(), a.SameValue(c))
	assert.True(suite.T(), c.SameValue(testutils.NewEntryBuilder().WithText("milk").WithDate("").Build()))
}

func (suite *EntryTestSuite) TestIndexOf() {
	// Arrange
	milk := testutils.NewEntryBuilder().WithText("milk").Build()
	eggs := testutils.NewEntryBuilder().WithText("eggs").Build()
	state := testutils.NewStateBuilder("home").With("home", milk, eggs).Build()

	// Act & Assert
	assert.Equal(suite.T(), 1, state.IndexOf("home", eggs))
	assert.Equal(suite.T(), -1, state.IndexOf("home", testutils.NewEntryBuilder().WithText("eggs").Build()), "different id")

	byValue := eggs
	byValue.ID = uuid.Nil
	assert.Equal(suite.T(), 1, state.IndexOf("home", byValue))
	assert.Equal(suite.T(), -1, state.IndexOf("office", eggs))
}

func (suite *EntryTestSuite) TestContainsText() {
	state := testutils.NewStateBuilder("home").
		With("home", testutils.NewEntryBuilder().WithText("Whole Milk").Build()).
		Build()

	assert.True(suite.T(), state.ContainsText("home", "  whole milk "))
	assert.False(suite.T(), state.ContainsText("home", "milk"))
	assert.True(suite.T(), state.Has("home"))
	assert.False(suite.T(), state.Has("office"))
}

func (suite *EntryTestSuite) TestViewQueryNormalize() {
	assert.Equal(suite.T(), pantry.StorageFilterAll, pantry.ViewQuery{}.Normalize().Storage)
	assert.True(suite.T(), pantry.StorageFilter("").Matches(pantry.StorageTypeFreezer))
	assert.True(suite.T(), pantry.StorageFilter("freezer").Matches(pantry.StorageTypeFreezer))
	assert.False(suite.T(), pantry.StorageFilter("freezer").Matches(pantry.StorageTypePantry))
	assert.False(suite.T(), pantry.StorageFilter("garage").Valid())
}

// TestEntryTestSuite runs the entry test suite
func TestEntryTestSuite(t *testing.T) {
	suite.Run(t, new(EntryTestSuite))
}
