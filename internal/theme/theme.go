// Package theme holds the lipgloss styles shared by the pgscope console
// surfaces. Everything visual references a style from the Theme struct so
// the look can be swapped in one place.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss.Style values for every console element.
type Theme struct {
	// Prompts
	Message  lipgloss.Style
	Selected lipgloss.Style
	Detail   lipgloss.Style

	// Results table
	TableBorder lipgloss.Style
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style

	// SQL syntax highlighting
	SQLKeyword  lipgloss.Style
	SQLString   lipgloss.Style
	SQLNumber   lipgloss.Style
	SQLComment  lipgloss.Style
	SQLOperator lipgloss.Style
	SQLType     lipgloss.Style

	// General
	ErrorText lipgloss.Style
	MutedText lipgloss.Style
}

// Default builds the standard dark theme.
func Default() *Theme {
	return &Theme{
		Message: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#569CD6")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#264F78")),
		Detail: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#808080")),

		TableBorder: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3C3C3C")),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4EC9B0")).
			Padding(0, 1),
		TableCell: lipgloss.NewStyle().
			Padding(0, 1),

		SQLKeyword: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#569CD6")),
		SQLString: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CE9178")),
		SQLNumber: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B5CEA8")),
		SQLComment: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6A9955")),
		SQLOperator: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D4D4D4")),
		SQLType: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4EC9B0")),

		ErrorText: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F44747")),
		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")),
	}
}

// Current is the active theme.
var Current = Default()
