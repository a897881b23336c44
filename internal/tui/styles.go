package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Status colors
	OK      = lipgloss.Color("#95E1A3") // Green
	Pending = lipgloss.Color("#FFE66D") // Yellow
	Danger  = lipgloss.Color("#FF6B6B") // Red
	Offline = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(22).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Content pane
	ContentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Section entries in the sidebar
	SectionItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	SectionItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Modal
	ModalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	MessageStyle = lipgloss.NewStyle().
			Foreground(OK).
			Padding(0, 1)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(Danger)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	DegradedStyle = lipgloss.NewStyle().
			Foreground(Pending).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Width(16)
)

// applyAccent recolors the accent-bearing styles from the configured hex.
func applyAccent(hex string) {
	if hex == "" {
		return
	}
	Primary = lipgloss.Color(hex)
	HeaderStyle = HeaderStyle.Foreground(Primary)
	ModalStyle = ModalStyle.BorderForeground(Primary)
}
