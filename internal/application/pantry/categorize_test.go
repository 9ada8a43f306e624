package pantry

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func groupLabels(view *inbound.CategorizedView) []string {
	out := make([]string, len(view.Groups))
	for i, g := range view.Groups {
		out[i] = g.Label
	}
	return out
}

func TestBuildCategorizedView(t *testing.T) {
	// Arrange
	entries := []pantry.Entry{
		testutils.NewEntryBuilder().WithText("Milk").WithStorage(pantry.StorageTypeRefrigerator).AddedDaysAgo(1).Build(),
		testutils.NewEntryBuilder().WithText("Rice").AddedDaysAgo(1).Build(),
		testutils.NewEntryBuilder().WithText("Cheddar").WithStorage(pantry.StorageTypeRefrigerator).AddedDaysAgo(3).Build(),
		testutils.NewEntryBuilder().WithText("Mystery jar").AddedDaysAgo(2).Build(),
	}
	rows := deriveView(entries, pantry.ViewQuery{}, testutils.FixedToday)
	assignments := []outbound.CategoryAssignment{
		{Ingredient: "rice", Category: "Grains"},
		{Ingredient: " MILK ", Category: "Dairy"},
		{Ingredient: "cheddar", Category: "Dairy"},
		{Ingredient: "cheddar", Category: "Cheese"},
		{Ingredient: "unicorn", Category: "Myth"},
		{Ingredient: "mystery jar", Category: "  "},
	}

	// Act
	view := buildCategorizedView("home", pantry.ViewQuery{}, rows, assignments)

	// Assert
	assert.Equal(t, []string{"Dairy", "Grains"}, groupLabels(view))
	assert.Equal(t, []string{"Cheddar", "Milk"}, viewTexts(view.Groups[0].Entries), "groups keep view order")
	assert.Equal(t, 1, view.Omitted)
	for _, g := range view.Groups {
		assert.True(t, g.Expanded)
	}
}

func (suite *ServiceTestSuite) TestCategorizeVisible() {
	// Arrange
	suite.add("home", "milk, rice, apples", pantry.StorageTypePantry, nil)
	suite.categorizer.On("Categorize", mock.Anything, []string{"apples", "milk", "rice"}).Return([]outbound.CategoryAssignment{
		{Ingredient: "apples", Category: "Produce"},
		{Ingredient: "milk", Category: "Dairy"},
		{Ingredient: "rice", Category: "Grains"},
	}, nil).Once()
	suite.events.Clear()

	// Act
	view, notes, err := suite.service.CategorizeVisible(suite.ctx)

	// Assert
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), notes)
	require.NotNil(suite.T(), view)
	assert.Equal(suite.T(), []string{"Produce", "Dairy", "Grains"}, groupLabels(view))
	assert.Equal(suite.T(), view, suite.service.CategorizedView("home"))
	assert.Nil(suite.T(), suite.service.CategorizedView("office"))
	suite.categorizer.AssertExpectations(suite.T())

	require.Len(suite.T(), suite.events.Events(), 1)
	completed := suite.events.Events()[0].(pantry.CategorizationCompletedEvent)
	assert.Equal(suite.T(), "applied", completed.Outcome)
	assert.Equal(suite.T(), 3, completed.Groups)
	assert.Equal(suite.T(), "mock-categorizer", completed.Provider)
}

func (suite *ServiceTestSuite) TestCategorizeVisible_SendsOnlyVisibleTexts() {
	suite.add("home", "milk, rice", pantry.StorageTypePantry, testutils.DaysAgo(1))
	suite.service.SetFilter(pantry.ViewQuery{Search: "mil"})
	suite.categorizer.On("Categorize", mock.Anything, []string{"milk"}).Return([]outbound.CategoryAssignment{}, nil).Once()

	view, notes, err := suite.service.CategorizeVisible(suite.ctx)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), view)
	assert.Empty(suite.T(), view.Groups)
	assert.Equal(suite.T(), 1, view.Omitted)
	suite.assertions.Notice(notes, pantry.NoticeCategorizationPartial)
	suite.categorizer.AssertExpectations(suite.T())
}

func (suite *ServiceTestSuite) TestCategorizeVisible_EmptyView() {
	view, notes, err := suite.service.CategorizeVisible(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), view)
	suite.assertions.Notice(notes, pantry.NoticeCategorizationSkipped)
	suite.categorizer.AssertNotCalled(suite.T(), "Categorize", mock.Anything, mock.Anything)
}

func (suite *ServiceTestSuite) TestCategorizeVisible_FailureKeepsFlatView() {
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.categorizer.On("Categorize", mock.Anything, mock.Anything).
		Return(nil, errors.NewCategorizationError("mock-categorizer", stderrors.New("timeout"))).Once()

	view, notes, err := suite.service.CategorizeVisible(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), view)
	suite.assertions.Notice(notes, pantry.NoticeCategorizationFailed)
	assert.Nil(suite.T(), suite.service.CategorizedView("home"))

	state, err := suite.service.Snapshot(suite.ctx)
	require.NoError(suite.T(), err)
	suite.assertions.Texts(state, "home", []string{"milk"})
}

func (suite *ServiceTestSuite) TestCategorizeVisible_NoCategorizer() {
	service := suite.newService(suite.kv, nil)
	_, err := service.AddItems(suite.ctx, inbound.AddItemsCommand{RawText: "milk", Location: "home"})
	require.NoError(suite.T(), err)

	view, notes, err := service.CategorizeVisible(suite.ctx)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), view)
	suite.assertions.Notice(notes, pantry.NoticeCategorizationFailed)
}

// blockingCategorizer parks the first call until release is closed so tests can act
// while a categorization is in flight
func blockingCategorizer(started chan<- struct{}, release <-chan struct{}) testutils.FuncCategorizer {
	return func(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
		close(started)
		<-release
		out := make([]outbound.CategoryAssignment, len(items))
		for i, item := range items {
			out[i] = outbound.CategoryAssignment{Ingredient: item, Category: "Stuff"}
		}
		return out, nil
	}
}

type categorizeResult struct {
	view  *inbound.CategorizedView
	notes []pantry.Notification
	err   error
}

func (suite *ServiceTestSuite) startBlockedCategorization() (chan struct{}, <-chan categorizeResult) {
	started := make(chan struct{})
	release := make(chan struct{})
	suite.service.categorizer = blockingCategorizer(started, release)

	done := make(chan categorizeResult, 1)
	go func() {
		view, notes, err := suite.service.CategorizeVisible(suite.ctx)
		done <- categorizeResult{view, notes, err}
	}()
	<-started
	return release, done
}

func (suite *ServiceTestSuite) TestCategorizeVisible_RejectsConcurrentCall() {
	// Arrange
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	release, done := suite.startBlockedCategorization()

	// Act
	_, _, err := suite.service.CategorizeVisible(suite.ctx)
	close(release)
	result := <-done

	// Assert
	suite.assertions.ErrorCode(err, errors.CodeOperationPending)
	require.NoError(suite.T(), result.err)
	require.NotNil(suite.T(), result.view)
	assert.Equal(suite.T(), []string{"Stuff"}, groupLabels(result.view))
}

func (suite *ServiceTestSuite) TestCategorizeVisible_StaleResults() {
	tests := []struct {
		name   string
		change func()
	}{
		{"entries changed", func() { suite.add("home", "eggs", pantry.StorageTypePantry, nil) }},
		{"location switched", func() { suite.service.SwitchLocation("office") }},
		{"filter changed", func() { suite.service.SetFilter(pantry.ViewQuery{Search: "mi"}) }},
		{"categorization cleared", func() { suite.service.ClearCategorization("home") }},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			// Arrange
			suite.SetupTest()
			suite.add("home", "milk", pantry.StorageTypePantry, nil)
			release, done := suite.startBlockedCategorization()

			// Act
			tt.change()
			close(release)
			result := <-done

			// Assert
			require.NoError(suite.T(), result.err)
			assert.Nil(suite.T(), result.view)
			suite.assertions.Notice(result.notes, pantry.NoticeCategorizationStale)
			assert.Nil(suite.T(), suite.service.CategorizedView("home"))
		})
	}
}

func (suite *ServiceTestSuite) TestCategorizedView_Invalidation() {
	tests := []struct {
		name   string
		change func()
	}{
		{"add", func() { suite.add("home", "eggs", pantry.StorageTypePantry, nil) }},
		{"remove", func() {
			_, err := suite.service.RemoveItemAt(suite.ctx, "home", 0)
			require.NoError(suite.T(), err)
		}},
		{"transfer in", func() {
			suite.add("office", "tea", pantry.StorageTypePantry, nil)
			_, err := suite.service.Transfer(suite.ctx, inbound.TransferRequest{
				Source: "office", Destination: "home", Indices: []int{0}, Mode: pantry.TransferModeCopy,
			})
			require.NoError(suite.T(), err)
		}},
		{"update", func() {
			_, err := suite.service.UpdateItemAt(suite.ctx, "home", 0, pantry.Entry{Text: "oat milk", StorageType: pantry.StorageTypePantry})
			require.NoError(suite.T(), err)
		}},
		{"update with identical entry", func() {
			state, err := suite.service.Snapshot(suite.ctx)
			require.NoError(suite.T(), err)
			entry := state["home"][0]
			_, err = suite.service.UpdateItem(suite.ctx, "home", entry, entry)
			require.NoError(suite.T(), err)
		}},
		{"update at with identical value", func() {
			_, err := suite.service.UpdateItemAt(suite.ctx, "home", 0, pantry.Entry{Text: "milk", StorageType: pantry.StorageTypePantry})
			require.NoError(suite.T(), err)
		}},
		{"filter", func() { suite.service.SetFilter(pantry.ViewQuery{Storage: "pantry"}) }},
		{"clear", func() { suite.service.ClearCategorization("home") }},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			// Arrange
			suite.SetupTest()
			suite.add("home", "milk", pantry.StorageTypePantry, nil)
			suite.categorizer.On("Categorize", mock.Anything, mock.Anything).Return([]outbound.CategoryAssignment{
				{Ingredient: "milk", Category: "Dairy"},
			}, nil)
			view, _, err := suite.service.CategorizeVisible(suite.ctx)
			require.NoError(suite.T(), err)
			require.NotNil(suite.T(), view)

			// Act
			tt.change()

			// Assert
			assert.Nil(suite.T(), suite.service.CategorizedView("home"))
		})
	}
}

func (suite *ServiceTestSuite) TestCategorizedView_UnrelatedMutationKeepsOverlay() {
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.categorizer.On("Categorize", mock.Anything, mock.Anything).Return([]outbound.CategoryAssignment{
		{Ingredient: "milk", Category: "Dairy"},
	}, nil)
	_, _, err := suite.service.CategorizeVisible(suite.ctx)
	require.NoError(suite.T(), err)

	suite.add("office", "tea", pantry.StorageTypePantry, nil)

	assert.NotNil(suite.T(), suite.service.CategorizedView("home"))
}

func (suite *ServiceTestSuite) TestToggleCategory() {
	// Arrange
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.categorizer.On("Categorize", mock.Anything, mock.Anything).Return([]outbound.CategoryAssignment{
		{Ingredient: "milk", Category: "Dairy"},
	}, nil)
	_, _, err := suite.service.CategorizeVisible(suite.ctx)
	require.NoError(suite.T(), err)

	// Act & Assert
	assert.False(suite.T(), suite.service.ToggleCategory("home", "Dairy"))
	group, ok := suite.service.CategorizedView("home").Group("Dairy")
	require.True(suite.T(), ok)
	assert.False(suite.T(), group.Expanded)

	assert.True(suite.T(), suite.service.ToggleCategory("home", "Dairy"))
	assert.False(suite.T(), suite.service.ToggleCategory("home", "Bakery"))
	assert.False(suite.T(), suite.service.ToggleCategory("office", "Dairy"))
}

func (suite *ServiceTestSuite) TestCategorizedView_ReturnsCopy() {
	suite.add("home", "milk", pantry.StorageTypePantry, nil)
	suite.categorizer.On("Categorize", mock.Anything, mock.Anything).Return([]outbound.CategoryAssignment{
		{Ingredient: "milk", Category: "Dairy"},
	}, nil)
	_, _, err := suite.service.CategorizeVisible(suite.ctx)
	require.NoError(suite.T(), err)

	view := suite.service.CategorizedView("home")
	view.Groups[0].Expanded = false
	view.Groups[0].Label = "changed"

	group, ok := suite.service.CategorizedView("home").Group("Dairy")
	require.True(suite.T(), ok)
	assert.True(suite.T(), group.Expanded)
}
