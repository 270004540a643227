package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("63")
	muted  = lipgloss.Color("241")
	danger = lipgloss.Color("196")
	okay   = lipgloss.Color("42")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	subtitleStyle  = lipgloss.NewStyle().Foreground(muted)
	frameStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2)
	labelStyle     = lipgloss.NewStyle().Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(danger)
	noticeStyle    = lipgloss.NewStyle().Foreground(okay)
	hintStyle      = lipgloss.NewStyle().Foreground(muted).Italic(true)
	buttonStyle    = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.NormalBorder()).BorderForeground(muted)
	buttonActive   = buttonStyle.BorderForeground(accent).Foreground(accent).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Background(accent).Foreground(lipgloss.Color("0"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(muted)
	dialogStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(danger).Padding(1, 2)

	priorityStyles = map[string]lipgloss.Style{
		"High":   lipgloss.NewStyle().Foreground(danger),
		"Medium": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"Low":    lipgloss.NewStyle().Foreground(okay),
	}
)

// Icon names the glyphs used across screens.
type Icon string

const (
	IconBack      Icon = "back"
	IconTask      Icon = "task"
	IconDone      Icon = "done"
	IconCalendar  Icon = "calendar"
	IconFlag      Icon = "flag"
	IconAdd       Icon = "add"
	IconDelete    Icon = "delete"
	IconLogout    Icon = "logout"
	IconUser      Icon = "user"
	IconEmail     Icon = "email"
	IconLock      Icon = "lock"
	IconCheckmark Icon = "checkmark"
)

var icons = map[Icon]string{
	IconBack:      "←",
	IconTask:      "○",
	IconDone:      "●",
	IconCalendar:  "◷",
	IconFlag:      "⚑",
	IconAdd:       "+",
	IconDelete:    "✗",
	IconLogout:    "⏻",
	IconUser:      "☺",
	IconEmail:     "@",
	IconLock:      "⚿",
	IconCheckmark: "✓",
}

// Glyph returns the glyph for name, or "?" for unknown names.
func Glyph(name Icon) string {
	if g, ok := icons[name]; ok {
		return g
	}
	return "?"
}
