package pantry

import (
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_SyncWhileIdle(t *testing.T) {
	// Arrange
	milk := testutils.NewEntryBuilder().WithText("milk").Build()
	editor := NewEditor(milk)
	external := milk
	external.Quantity = "2 l"

	// Act
	applied := editor.Sync(external)

	// Assert
	assert.True(t, applied)
	assert.Equal(t, "2 l", editor.Current().Quantity)
	assert.Equal(t, "2 l", editor.Draft().Quantity)
}

func TestEditor_SyncIgnoredWhileEditing(t *testing.T) {
	// Arrange
	milk := testutils.NewEntryBuilder().WithText("milk").Build()
	editor := NewEditor(milk)
	editor.Change(func(draft *pantry.Entry) { draft.Text = "oat milk" })

	// Act
	external := milk
	external.Text = "whole milk"
	applied := editor.Sync(external)

	// Assert
	assert.False(t, applied)
	assert.True(t, editor.Editing())
	assert.Equal(t, "oat milk", editor.Draft().Text)
	assert.Equal(t, "milk", editor.Current().Text)
}

func TestEditor_Commit(t *testing.T) {
	milk := testutils.NewEntryBuilder().WithText("milk").AddedDaysAgo(2).Build()
	editor := NewEditor(milk)

	_, _, ok := editor.Commit()
	assert.False(t, ok, "nothing to commit while idle")

	editor.Change(func(draft *pantry.Entry) {
		draft.Text = "oat milk"
		draft.DateAdded = nil
	})
	original, updated, ok := editor.Commit()

	require.True(t, ok)
	assert.Equal(t, "milk", original.Text)
	assert.Equal(t, "oat milk", updated.Text)
	assert.Nil(t, updated.DateAdded)
	assert.Equal(t, milk.ID, updated.ID)
	assert.False(t, editor.Editing())
	assert.Equal(t, "oat milk", editor.Current().Text)

	assert.True(t, editor.Sync(milk), "sync resumes after commit")
}

func TestEditor_Cancel(t *testing.T) {
	milk := testutils.NewEntryBuilder().WithText("milk").Build()
	editor := NewEditor(milk)
	editor.Begin()
	editor.Change(func(draft *pantry.Entry) { draft.Quantity = "3" })

	editor.Cancel()

	assert.False(t, editor.Editing())
	assert.Equal(t, "", editor.Draft().Quantity)
}

func (suite *ServiceTestSuite) TestEditor_RoundTripThroughService() {
	// Arrange
	state := suite.add("home", "milk", pantry.StorageTypeRefrigerator, testutils.DaysAgo(1))
	editor := NewEditor(state["home"][0])
	editor.Change(func(draft *pantry.Entry) { draft.Quantity = "1 l" })

	// A refresh from another writer arrives mid-edit
	assert.False(suite.T(), editor.Sync(state["home"][0]))

	// Act
	original, updated, ok := editor.Commit()
	require.True(suite.T(), ok)
	state, err := suite.service.UpdateItem(suite.ctx, "home", original, updated)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "1 l", state["home"][0].Quantity)
	assert.True(suite.T(), editor.Sync(state["home"][0]))
}
