// Package tui is the terminal grid editor. It renders a grid.Grid as a table,
// edits one row at a time in a field panel and runs store calls as
// background commands.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/tripgrid/internal/grid"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Messages returned by background commands
type (
	committedMsg struct{ row grid.Row }
	deletedMsg   struct{ err error }
	resetMsg     struct{ err error }
)

// Model is the bubbletea model of the grid editor.
type Model struct {
	ctx  context.Context
	grid *grid.Grid

	table table.Model
	ids   []string // row ids in table order
	input textinput.Model
	help  help.Model
	keys  keyMap

	// Row being edited and its focused field index into types.EditableFields.
	editing  string
	fieldIdx int

	deleting bool // confirmed delete not yet reported

	message string
	isError bool

	width  int
	height int
}

var columns = []table.Column{
	{Title: "Name", Width: 20},
	{Title: "Location", Width: 16},
	{Title: "Date", Width: 12},
	{Title: "Description", Width: 30},
	{Title: "Status", Width: 8},
}

// New builds the editor over g. ctx bounds the background reset.
func New(ctx context.Context, g *grid.Grid) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(SubtleColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(PrimaryColor)
	t.SetStyles(s)

	in := textinput.New()
	in.CharLimit = 256
	in.Width = 50

	m := Model{
		ctx:   ctx,
		grid:  g,
		table: t,
		input: in,
		help:  help.New(),
		keys:  defaultKeyMap(),
	}
	m.refreshTable()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 14; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case committedMsg:
		st, _ := m.grid.Status(msg.row.ID)
		if st == grid.Failed {
			m.setError(fmt.Errorf("save of %q did not reach the store", displayName(msg.row)))
		} else {
			m.setMessage(fmt.Sprintf("Saved %q", displayName(msg.row)))
		}
		m.refreshTable()
		return m, nil

	case deletedMsg:
		m.deleting = false
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setMessage("Deleted")
		}
		m.refreshTable()
		return m, nil

	case resetMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setMessage("Store reset")
		}
		m.refreshTable()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (m.editing == "" || msg.String() == "ctrl+c") {
			return m, tea.Quit
		}
		switch {
		case m.grid.Confirmation().State == grid.ConfirmAwaiting:
			return m.updateConfirm(msg)
		case m.editing != "":
			return m.updateEdit(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

// updateBrowse handles keys while no row is being edited.
func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		id := m.grid.CreateDraftRow()
		m.refreshTable()
		m.table.GotoBottom()
		return m, m.startEdit(id)

	case key.Matches(msg, m.keys.Edit):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		if err := m.grid.Edit(id); err != nil && !errors.Is(err, grid.ErrAlreadyEditing) {
			m.setError(err)
			return m, nil
		}
		return m, m.startEdit(id)

	case key.Matches(msg, m.keys.Delete):
		id := m.selectedID()
		if id == "" {
			return m, nil
		}
		if err := m.grid.RequestDelete(id); err != nil {
			m.setError(err)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.setMessage("Resetting store...")
		return m, resetCmd(m.ctx, m.grid)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateEdit handles keys while a row is being edited.
func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.editing
	switch {
	case key.Matches(msg, m.keys.Save):
		if err := m.flushInput(); err != nil {
			m.setError(err)
			return m, nil
		}
		row, err := m.grid.BeginSave(id)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.stopEdit()
		m.setMessage(fmt.Sprintf("Saving %q...", displayName(row)))
		return m, commitCmd(m.grid, row)

	case key.Matches(msg, m.keys.Cancel):
		if err := m.grid.StopEdit(id, grid.StopEscapeKeyDown); err != nil {
			m.setError(err)
		}
		m.stopEdit()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		return m, m.moveField(1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.moveField(-1)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if err := m.flushInput(); err != nil {
		m.setError(err)
	}
	m.refreshTable()
	return m, cmd
}

// updateConfirm handles keys while the delete confirmation is open.
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deleting || m.grid.InFlight(m.grid.Confirmation().Target) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.deleting = true
		m.setMessage("Deleting...")
		return m, deleteCmd(m.grid)
	case key.Matches(msg, m.keys.Deny):
		m.grid.CancelDelete()
		m.setMessage("Delete cancelled")
	}
	return m, nil
}

// startEdit opens the field panel on a row in Edit mode.
func (m *Model) startEdit(id string) tea.Cmd {
	m.editing = id
	m.fieldIdx = 0
	if focus := m.grid.Mode(id).FieldToFocus; focus != "" {
		for i, f := range types.EditableFields {
			if f == focus {
				m.fieldIdx = i
			}
		}
	}
	m.loadInput()
	m.table.Blur()
	m.refreshTable()
	return m.input.Focus()
}

func (m *Model) stopEdit() {
	m.editing = ""
	m.input.Blur()
	m.table.Focus()
	m.refreshTable()
}

// moveField writes the input back into the draft and focuses another field.
func (m *Model) moveField(delta int) tea.Cmd {
	if err := m.flushInput(); err != nil {
		m.setError(err)
	}
	n := len(types.EditableFields)
	m.fieldIdx = ((m.fieldIdx+delta)%n + n) % n
	m.loadInput()
	return m.input.Focus()
}

func (m *Model) loadInput() {
	field := types.EditableFields[m.fieldIdx]
	draft, _ := m.grid.Draft(m.editing)
	v, _ := draft.Field(field)
	m.input.SetValue(v)
	m.input.Placeholder = field
	m.input.CursorEnd()
}

func (m *Model) flushInput() error {
	return m.grid.SetField(m.editing, types.EditableFields[m.fieldIdx], m.input.Value())
}

// selectedID returns the id of the highlighted row.
func (m Model) selectedID() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.ids) {
		return ""
	}
	return m.ids[i]
}

// refreshTable rebuilds the table rows from the grid, showing drafts for
// rows in Edit.
func (m *Model) refreshTable() {
	rows := m.grid.Rows()
	m.ids = m.ids[:0]
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		status := "synced"
		if st, ok := m.grid.Status(r.ID); ok {
			status = st.String()
		}
		if d, ok := m.grid.Draft(r.ID); ok {
			r = d
			status = "editing"
		}
		m.ids = append(m.ids, r.ID)
		out = append(out, table.Row{r.Name, r.Location, r.Date, r.Description, status})
	}
	m.table.SetRows(out)
	if c := m.table.Cursor(); c >= len(out) && len(out) > 0 {
		m.table.SetCursor(len(out) - 1)
	}
}

func (m *Model) setMessage(s string) {
	m.message = s
	m.isError = false
}

func (m *Model) setError(err error) {
	m.message = err.Error()
	m.isError = true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("My Planned Trips"))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.statusColumnLegend())
	b.WriteString("\n")

	if m.editing != "" {
		b.WriteString(m.editView())
		b.WriteString("\n")
	}

	if c := m.grid.Confirmation(); c.State == grid.ConfirmAwaiting {
		row, _ := m.grid.Row(c.Target)
		modal := ModalStyle.Render(fmt.Sprintf(
			"Delete %q?\n\n[y] delete   [n] keep", displayName(row)))
		b.WriteString(modal)
		b.WriteString("\n")
	}

	if m.message != "" {
		style := StatusLineStyle
		if m.isError {
			style = ErrorLineStyle
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}

	if m.editing != "" {
		b.WriteString(m.help.View(editHelp{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// editView renders the draft fields of the row being edited.
func (m Model) editView() string {
	draft, _ := m.grid.Draft(m.editing)
	lines := make([]string, 0, len(types.EditableFields))
	for i, f := range types.EditableFields {
		if i == m.fieldIdx {
			lines = append(lines, FocusedLabelStyle.Render(f)+m.input.View())
			continue
		}
		v, _ := draft.Field(f)
		lines = append(lines, FieldLabelStyle.Render(f)+v)
	}
	return EditBoxStyle.Render(strings.Join(lines, "\n"))
}

// statusColumnLegend summarizes sync status counts.
func (m Model) statusColumnLegend() string {
	counts := map[string]int{}
	for _, id := range m.ids {
		if st, ok := m.grid.Status(id); ok {
			counts[st.String()]++
		}
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{"synced", "pending", "failed"} {
		if counts[s] > 0 {
			parts = append(parts, statusStyle(s).Render(fmt.Sprintf("%d %s", counts[s], s)))
		}
	}
	return strings.Join(parts, "  ")
}

func displayName(r grid.Row) string {
	if r.Name != "" {
		return r.Name
	}
	return "untitled trip"
}

// commitCmd persists a row in the background.
func commitCmd(g *grid.Grid, row grid.Row) tea.Cmd {
	return func() tea.Msg {
		return committedMsg{row: g.CommitRow(row)}
	}
}

// deleteCmd confirms the pending delete in the background.
func deleteCmd(g *grid.Grid) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{err: g.ConfirmDelete()}
	}
}

// resetCmd resets the store in the background.
func resetCmd(ctx context.Context, g *grid.Grid) tea.Cmd {
	return func() tea.Msg {
		return resetMsg{err: g.Reset(ctx)}
	}
}

// Run starts the editor on the terminal and blocks until it quits.
func Run(ctx context.Context, g *grid.Grid) error {
	p := tea.NewProgram(New(ctx, g), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
