package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/docsearch/internal/entry"
)

// Color palette: one lime accent on grays.
const (
	ColorLime     = "154" // selection, prompt
	ColorLimeDim  = "106" // section labels
	ColorWhite    = "255" // titles
	ColorGray     = "245" // paths, hints
	ColorDarkGray = "238" // borders
	ColorRed      = "196" // errors
	ColorYellow   = "220" // warnings
)

// Styles holds all palette styles.
type Styles struct {
	Header   lipgloss.Style
	Prompt   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Section  lipgloss.Style
	Path     lipgloss.Style
	Dim      lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style
}

// DefaultStyles returns the colored palette styles.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Section:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Path:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
	}
}

// NoColorStyles returns unstyled components. The panel keeps its border.
func NoColorStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle(),
		Prompt:   lipgloss.NewStyle(),
		Item:     lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle(),
		Section:  lipgloss.NewStyle(),
		Path:     lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle(),
		Success:  lipgloss.NewStyle(),
		Warning:  lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle(),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// SectionLabel is the short tag shown next to a result.
func SectionLabel(s entry.Section) string {
	return s.String()
}
