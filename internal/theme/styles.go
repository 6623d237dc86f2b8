package theme

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles the terminal UI renders with.
type Styles struct {
	App           lipgloss.Style
	Header        lipgloss.Style
	Title         lipgloss.Style
	Description   lipgloss.Style
	Done          lipgloss.Style
	DoneDesc      lipgloss.Style
	Overdue       lipgloss.Style
	DueDate       lipgloss.Style
	Cursor        lipgloss.Style
	Selected      lipgloss.Style
	Checkbox      lipgloss.Style
	FilterActive  lipgloss.Style
	FilterIdle    lipgloss.Style
	SortActive    lipgloss.Style
	Label         lipgloss.Style
	Input         lipgloss.Style
	InputFocused  lipgloss.Style
	Error         lipgloss.Style
	Warning       lipgloss.Style
	Success       lipgloss.Style
	Help          lipgloss.Style
	Empty         lipgloss.Style
	StatusBar     lipgloss.Style
	ConfirmBorder lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p Palette) Styles {
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }

	return Styles{
		App: lipgloss.NewStyle().
			Foreground(c(p.Text)).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(c(p.Text)).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(c(p.Border)),
		Title:       lipgloss.NewStyle().Foreground(c(p.Text)),
		Description: lipgloss.NewStyle().Foreground(c(p.TextSecondary)),
		Done: lipgloss.NewStyle().
			Foreground(c(p.TextSecondary)).
			Strikethrough(true),
		DoneDesc: lipgloss.NewStyle().
			Foreground(c(p.TextSecondary)).
			Strikethrough(true),
		Overdue: lipgloss.NewStyle().
			Foreground(c(p.Danger)).
			Bold(true),
		DueDate:  lipgloss.NewStyle().Foreground(c(p.TextSecondary)),
		Cursor:   lipgloss.NewStyle().Foreground(c(p.Primary)).Bold(true),
		Selected: lipgloss.NewStyle().Background(c(p.Muted)),
		Checkbox: lipgloss.NewStyle().Foreground(c(p.Primary)),
		FilterActive: lipgloss.NewStyle().
			Foreground(c(p.PrimaryText)).
			Background(c(p.Primary)).
			Bold(true).
			Padding(0, 1),
		FilterIdle: lipgloss.NewStyle().
			Foreground(c(p.TextSecondary)).
			Padding(0, 1),
		SortActive: lipgloss.NewStyle().
			Foreground(c(p.PrimaryText)).
			Background(c(p.Accent)).
			Bold(true).
			Padding(0, 1),
		Label: lipgloss.NewStyle().Foreground(c(p.TextSecondary)),
		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c(p.Border)).
			Padding(0, 1),
		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c(p.Primary)).
			Padding(0, 1),
		Error:   lipgloss.NewStyle().Foreground(c(p.Danger)),
		Warning: lipgloss.NewStyle().Foreground(c(p.Warning)),
		Success: lipgloss.NewStyle().Foreground(c(p.Success)),
		Help:    lipgloss.NewStyle().Foreground(c(p.TextSecondary)),
		Empty: lipgloss.NewStyle().
			Foreground(c(p.TextSecondary)).
			Italic(true).
			MarginTop(1),
		StatusBar: lipgloss.NewStyle().
			Foreground(c(p.TextSecondary)).
			MarginTop(1),
		ConfirmBorder: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c(p.Warning)).
			Padding(0, 1),
	}
}
