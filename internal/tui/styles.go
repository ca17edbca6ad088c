package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7D56F4")
	SuccessColor = lipgloss.Color("#43BF6D")
	WarningColor = lipgloss.Color("#FFA500")
	ErrorColor   = lipgloss.Color("#FF5F56")
	SubtleColor  = lipgloss.Color("#626262")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	StatusLineStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	ErrorLineStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// Edit panel around the draft fields
	EditBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1)

	FieldLabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(14)

	FocusedLabelStyle = FieldLabelStyle.
				Foreground(PrimaryColor).
				Bold(true)

	// Delete confirmation modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor).
			Padding(1, 3)
)

// statusStyle colors the sync status column.
func statusStyle(s string) lipgloss.Style {
	switch s {
	case "synced":
		return lipgloss.NewStyle().Foreground(SuccessColor)
	case "pending", "editing":
		return lipgloss.NewStyle().Foreground(WarningColor)
	case "failed":
		return lipgloss.NewStyle().Foreground(ErrorColor)
	default:
		return lipgloss.NewStyle()
	}
}
