package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
	"github.com/mesh-intelligence/tripgrid/pkg/sqlite"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// newTestModel returns an editor over a SQLite store in a temp directory
// holding trips.
func newTestModel(t *testing.T, trips ...*types.Trip) (Model, types.Table) {
	t.Helper()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(cfg))
	t.Cleanup(func() { store.Detach() })

	tbl, err := store.GetTable(types.TripsTable)
	require.NoError(t, err)
	for _, tr := range trips {
		_, err := tbl.Set(tr.TripID, tr)
		require.NoError(t, err)
	}

	g, err := grid.New(store, cfg)
	require.NoError(t, err)
	_, err = g.Refresh()
	require.NoError(t, err)
	return New(context.Background(), g), tbl
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds a key to the model and returns the updated model and command.
func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// typeText sends each character as a separate key press.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = press(t, m, runes(string(r)))
	}
	return m
}

func TestAddAndSaveTrip(t *testing.T) {
	m, tbl := newTestModel(t)

	m, _ = press(t, m, runes("a"))
	require.NotEmpty(t, m.editing)
	id := m.editing
	assert.Equal(t, grid.ModeEdit, m.grid.Mode(id).Mode)

	m = typeText(t, m, "Tokyo")
	draft, ok := m.grid.Draft(id)
	require.True(t, ok)
	assert.Equal(t, "Tokyo", draft.Name)
	assert.Contains(t, m.View(), "Tokyo")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "Temples")
	draft, _ = m.grid.Draft(id)
	assert.Equal(t, "Temples", draft.Description)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.editing)
	st, _ := m.grid.Status(id)
	assert.Equal(t, grid.Pending, st)

	m, _ = press(t, m, cmd())
	st, _ = m.grid.Status(id)
	assert.Equal(t, grid.Synced, st)
	assert.False(t, m.isError)

	got, err := tbl.Get(id)
	require.NoError(t, err)
	trip := got.(*types.Trip)
	assert.Equal(t, "Tokyo", trip.Name)
	assert.Equal(t, "Temples", trip.Description)
}

func TestEscapeDropsDraft(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("a"))
	id := m.editing
	m = typeText(t, m, "Oslo")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Empty(t, m.editing)
	_, ok := m.grid.Row(id)
	assert.False(t, ok)
	assert.Zero(t, m.grid.Len())
}

func TestEditExistingRow(t *testing.T) {
	m, tbl := newTestModel(t, &types.Trip{TripID: "t1", Name: "Paris"})

	m, _ = press(t, m, runes("e"))
	require.Equal(t, "t1", m.editing)
	assert.Equal(t, "Paris", m.input.Value())

	m = typeText(t, m, "ian")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = press(t, m, cmd())

	row, ok := m.grid.Row("t1")
	require.True(t, ok)
	assert.Equal(t, "Parisian", row.Name)
	got, err := tbl.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "Parisian", got.(*types.Trip).Name)
}

func TestQuitKeyIsTextWhileEditing(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("a"))
	m, _ = press(t, m, runes("q"))
	require.NotEmpty(t, m.editing)
	draft, _ := m.grid.Draft(m.editing)
	assert.Equal(t, "q", draft.Name)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestDeleteConfirmation(t *testing.T) {
	m, tbl := newTestModel(t, &types.Trip{TripID: "t1", Name: "Paris"})

	m, _ = press(t, m, runes("d"))
	assert.Equal(t, grid.ConfirmAwaiting, m.grid.Confirmation().State)
	assert.Contains(t, m.View(), `Delete "Paris"?`)

	m, _ = press(t, m, runes("n"))
	assert.Equal(t, grid.ConfirmClosed, m.grid.Confirmation().State)
	_, ok := m.grid.Row("t1")
	assert.True(t, ok)

	m, _ = press(t, m, runes("d"))
	m, cmd := press(t, m, runes("y"))
	require.NotNil(t, cmd)
	m, _ = press(t, m, cmd())

	_, ok = m.grid.Row("t1")
	assert.False(t, ok)
	_, err := tbl.Get("t1")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NotContains(t, m.View(), "[y] delete")
}

func TestConfirmKeysIgnoredWhileDeleting(t *testing.T) {
	m, tbl := newTestModel(t, &types.Trip{TripID: "t1", Name: "Paris"})

	m, _ = press(t, m, runes("d"))
	m, cmd := press(t, m, runes("y"))
	require.NotNil(t, cmd)

	m, again := press(t, m, runes("y"))
	assert.Nil(t, again, "a second confirm must not start another delete")
	m, _ = press(t, m, runes("n"))
	assert.Equal(t, grid.ConfirmAwaiting, m.grid.Confirmation().State)
	assert.NotEqual(t, "Delete cancelled", m.message)

	m, _ = press(t, m, cmd())
	assert.False(t, m.deleting)
	assert.Equal(t, grid.ConfirmClosed, m.grid.Confirmation().State)
	_, ok := m.grid.Row("t1")
	assert.False(t, ok)
	_, err := tbl.Get("t1")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResetKey(t *testing.T) {
	m, tbl := newTestModel(t, &types.Trip{TripID: "t1", Name: "Paris"})

	m, cmd := press(t, m, runes("R"))
	require.NotNil(t, cmd)
	m, _ = press(t, m, cmd())

	assert.False(t, m.isError)
	assert.Zero(t, m.grid.Len())
	got, err := tbl.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResetWhileEditingShowsError(t *testing.T) {
	m, _ := newTestModel(t, &types.Trip{TripID: "t1", Name: "Paris"})

	// Start an edit, then issue a reset directly.
	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, resetCmd(context.Background(), m.grid)())

	assert.True(t, m.isError)
	assert.Equal(t, grid.ModeEdit, m.grid.Mode("t1").Mode)
}
