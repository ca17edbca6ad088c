package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

func TestScenarioConfirmedDelete(t *testing.T) {
	g, store := newTestGrid(t, defaultConfig, &types.Trip{TripID: "t1", Name: "Paris"})

	require.NoError(t, g.RequestDelete("t1"))
	_, ok := g.Row("t1")
	assert.True(t, ok, "t1 is still present before confirmation")

	require.NoError(t, g.ConfirmDelete())
	_, ok = g.Row("t1")
	assert.False(t, ok)
	assert.Equal(t, []string{"t1"}, store.table.deletes, "exactly one remote delete for t1")
}

func TestScenarioCreateAndCommit(t *testing.T) {
	g, store := newTestGrid(t, defaultConfig)

	id := g.CreateDraftRow()
	require.NoError(t, g.SetField(id, types.FieldName, "Tokyo"))
	row, err := g.BeginSave(id)
	require.NoError(t, err)
	require.True(t, row.IsNew)

	got := g.CommitRow(row)

	require.Len(t, store.table.creates, 1)
	assert.Equal(t, "Tokyo", store.table.creates[0].Name)
	assert.False(t, got.IsNew)
	assert.Equal(t, id, got.ID)

	stored, ok := g.Row(id)
	require.True(t, ok)
	assert.False(t, stored.IsNew)
	assert.Equal(t, "Tokyo", stored.Name)
}
