package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles shared by the prompt wizard and CLI summaries.
type Theme struct {
	Brand       lipgloss.Style
	Question    lipgloss.Style
	Answer      lipgloss.Style
	Hint        lipgloss.Style
	Cursor      lipgloss.Style
	Option      lipgloss.Style
	OptionFocus lipgloss.Style
	Checked     lipgloss.Style
	Unchecked   lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Muted       lipgloss.Style
	SummaryKey  lipgloss.Style
	SummaryVal  lipgloss.Style
	Frame       lipgloss.Style
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#dcd7ff"))

	return Theme{
		Brand: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1020")).
			Background(lipgloss.Color("#FBC859")).
			Bold(true).
			Padding(0, 1),
		Question:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E1FF")).Bold(true),
		Answer:      lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB3B3")),
		Hint:        lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Italic(true),
		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		Option:      base,
		OptionFocus: lipgloss.NewStyle().Foreground(accent).Bold(true),
		Checked:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		Unchecked:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")),
		SummaryKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		SummaryVal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")).
			Padding(0, 1),
	}
}

// Plain returns unstyled equivalents, used when output is not a terminal.
func Plain() Theme {
	s := lipgloss.NewStyle()
	return Theme{
		Brand: s, Question: s, Answer: s, Hint: s, Cursor: s,
		Option: s, OptionFocus: s, Checked: s, Unchecked: s,
		Error: s, Success: s, Muted: s, SummaryKey: s, SummaryVal: s,
		Frame: s,
	}
}
