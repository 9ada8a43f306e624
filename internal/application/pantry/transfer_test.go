package pantry

import (
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTransfer(t *testing.T) {
	source := []pantry.Entry{
		testutils.NewEntryBuilder().WithText("a").Build(),
		testutils.NewEntryBuilder().WithText("b").Build(),
		testutils.NewEntryBuilder().WithText("c").Build(),
		testutils.NewEntryBuilder().WithText("d").Build(),
	}

	tests := []struct {
		name              string
		indices           []int
		mode              pantry.TransferMode
		expectedRemaining []string
		expectedMoved     []string
	}{
		{"move ascending", []int{0, 2}, pantry.TransferModeMove, []string{"b", "d"}, []string{"a", "c"}},
		{"move unordered with duplicates", []int{3, 1, 3}, pantry.TransferModeMove, []string{"a", "c"}, []string{"b", "d"}},
		{"out of range ignored", []int{-1, 1, 4}, pantry.TransferModeMove, []string{"a", "c", "d"}, []string{"b"}},
		{"copy keeps source", []int{2, 0}, pantry.TransferModeCopy, []string{"a", "b", "c", "d"}, []string{"a", "c"}},
		{"nothing valid", []int{7}, pantry.TransferModeMove, []string{"a", "b", "c", "d"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			remaining, moved := planTransfer(source, tt.indices, tt.mode)

			// Assert
			assert.Equal(t, tt.expectedRemaining, testutils.Texts(remaining))
			assert.Equal(t, tt.expectedMoved, testutils.Texts(moved))
			assert.Len(t, source, 4, "source slice is not modified")
		})
	}
}

func TestPlanTransfer_Identifiers(t *testing.T) {
	source := []pantry.Entry{testutils.NewEntryBuilder().WithText("a").Build()}

	_, moved := planTransfer(source, []int{0}, pantry.TransferModeMove)
	_, copied := planTransfer(source, []int{0}, pantry.TransferModeCopy)

	assert.Equal(t, source[0].ID, moved[0].ID)
	assert.NotEqual(t, source[0].ID, copied[0].ID)
	assert.True(t, source[0].SameValue(copied[0]))
}

func (suite *ServiceTestSuite) TestTransfer_Move() {
	// Arrange
	suite.add("home", "milk, eggs, bread", pantry.StorageTypeRefrigerator, testutils.DaysAgo(3))
	suite.add("office", "coffee", pantry.StorageTypePantry, nil)
	suite.service.ToggleSelection("home", 0)
	suite.events.Clear()

	// Act
	state, err := suite.service.Transfer(suite.ctx, inbound.TransferRequest{
		Source:      "home",
		Destination: "office",
		Indices:     []int{2, 0},
		Mode:        pantry.TransferModeMove,
	})

	// Assert
	require.NoError(suite.T(), err)
	suite.assertions.Texts(state, "home", []string{"eggs"})
	suite.assertions.Texts(state, "office", []string{"coffee", "milk", "bread"})
	assert.Equal(suite.T(), pantry.StorageTypeRefrigerator, state["office"][1].StorageType)
	assert.Equal(suite.T(), *testutils.DaysAgo(3), *state["office"][1].DateAdded)
	assert.Empty(suite.T(), suite.service.Selection("home"))

	persisted := suite.persisted()
	suite.assertions.Texts(persisted, "home", []string{"eggs"})
	suite.assertions.Texts(persisted, "office", []string{"coffee", "milk", "bread"})

	require.Len(suite.T(), suite.events.Events(), 1)
	event := suite.events.Events()[0].(pantry.EntriesTransferredEvent)
	assert.Equal(suite.T(), 2, event.Count)
	assert.Equal(suite.T(), pantry.TransferModeMove, event.Mode)
}

func (suite *ServiceTestSuite) TestTransfer_CopyAllowsDuplicates() {
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.add("office", "Milk", pantry.StorageTypePantry, nil)
	suite.service.ToggleSelection("home", 0)

	state, err := suite.service.Transfer(suite.ctx, inbound.TransferRequest{
		Source:      "home",
		Destination: "office",
		Indices:     []int{0},
		Mode:        pantry.TransferModeCopy,
	})

	require.NoError(suite.T(), err)
	suite.assertions.Texts(state, "home", []string{"milk"})
	suite.assertions.Texts(state, "office", []string{"Milk", "milk"})
	assert.Equal(suite.T(), []int{0}, suite.service.Selection("home"), "copy keeps source positions")
}

func (suite *ServiceTestSuite) TestTransfer_NoOps() {
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.events.Clear()

	requests := map[string]inbound.TransferRequest{
		"same location":        {Source: "home", Destination: "home", Indices: []int{0}, Mode: pantry.TransferModeMove},
		"unknown destination":  {Source: "home", Destination: "garage", Indices: []int{0}, Mode: pantry.TransferModeMove},
		"unknown source":       {Source: "garage", Destination: "home", Indices: []int{0}, Mode: pantry.TransferModeMove},
		"invalid mode":         {Source: "home", Destination: "office", Indices: []int{0}, Mode: "teleport"},
		"no indices":           {Source: "home", Destination: "office", Mode: pantry.TransferModeMove},
		"only invalid indices": {Source: "home", Destination: "office", Indices: []int{3}, Mode: pantry.TransferModeCopy},
	}

	for name, req := range requests {
		suite.Run(name, func() {
			state, err := suite.service.Transfer(suite.ctx, req)

			require.NoError(suite.T(), err)
			suite.assertions.Texts(state, "home", []string{"milk"})
			suite.assertions.Empty(state, "office")
		})
	}
	assert.Empty(suite.T(), suite.events.Events())
}

func (suite *ServiceTestSuite) TestTransferSelected() {
	// Arrange
	suite.add("home", "milk, eggs, bread", pantry.StorageTypePantry, nil)
	suite.service.ToggleSelection("home", 1)
	suite.service.ToggleSelection("home", 2)

	// Act
	state, err := suite.service.TransferSelected(suite.ctx, "office", pantry.TransferModeCopy)

	// Assert
	require.NoError(suite.T(), err)
	suite.assertions.Texts(state, "home", []string{"milk", "eggs", "bread"})
	suite.assertions.Texts(state, "office", []string{"eggs", "bread"})
	assert.Empty(suite.T(), suite.service.Selection("home"), "selection is cleared after a transfer")
}

func (suite *ServiceTestSuite) TestTransferSelected_SameLocationKeepsSelection() {
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.service.ToggleSelection("home", 0)

	_, err := suite.service.TransferSelected(suite.ctx, "home", pantry.TransferModeMove)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []int{0}, suite.service.Selection("home"))
}
