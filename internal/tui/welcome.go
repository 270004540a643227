package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasknova/internal/navigation"
)

// AppName is the banner shown on the welcome screen.
const AppName = "TaskNova!"

var welcomeButtons = []struct {
	label string
	route navigation.Route
}{
	{"Register", navigation.Register},
	{"Login", navigation.Login},
}

func (m *Model) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "left", "shift+tab", "h":
		m.welcomeFocus = (m.welcomeFocus + len(welcomeButtons) - 1) % len(welcomeButtons)
	case "right", "tab", "l":
		m.welcomeFocus = (m.welcomeFocus + 1) % len(welcomeButtons)
	case "r":
		m.navigate(navigation.Register)
	case "enter", " ":
		m.navigate(welcomeButtons[m.welcomeFocus].route)
	}
	return m, nil
}

func (m *Model) viewWelcome() string {
	labels := make([]string, len(welcomeButtons))
	for i, b := range welcomeButtons {
		labels[i] = b.label
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		"Manage your tasks from the terminal.",
		"",
		Buttons(labels, m.welcomeFocus),
	)
	return ScreenWrapper(m.width,
		Header(Glyph(IconCheckmark)+" "+AppName, "Welcome"),
		body,
		m.footer("←/→ choose • enter open • q quit"),
	)
}
