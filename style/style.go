package style

import (
	"charm.land/lipgloss/v2"
)

var (
	BackgroundColor = lipgloss.Color("234")                                 // Dark warm grey
	BorderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Subtle warm grey border
	HlRowStyle      = lipgloss.NewStyle().Background(lipgloss.Color("235")) // Very subtle warm grey row
	HlCellStyle     = lipgloss.NewStyle().Background(lipgloss.Color("237")) // Slightly warmer cell
	MarkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("179")) // Muted amber for marked rows
	GroupStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110")) // Soft blue for group operators
	MutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("246")) // Warm muted grey text
	UnStyle         = lipgloss.NewStyle()
)

// RowStyler returns a StyleFunc that highlights the selected row
func RowStyler(selectedRow int) func(row, col int) lipgloss.Style {
	return func(row, col int) lipgloss.Style {
		if row == selectedRow {
			return HlRowStyle
		}
		return UnStyle
	}
}
