package common

import "github.com/charmbracelet/lipgloss"

var (
	Accent = lipgloss.Color("#2E9CCA")
	Muted  = lipgloss.Color("#828282")

	TitleStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true).Padding(1, 0)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))

	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	MetaStyle = lipgloss.NewStyle().Foreground(Muted)

	HintStyle = lipgloss.NewStyle().Foreground(Muted)

	FocusStyle = lipgloss.NewStyle().Foreground(Accent)

	AuthorStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32"))

	SelectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(Accent).
			PaddingLeft(1)

	UnselectedStyle = lipgloss.NewStyle().PaddingLeft(2)

	SeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))

	LikedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D6D")).Bold(true)
)
