package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// The components below only render. State lives in the screen models.

// Button renders a labelled button, highlighted when focused.
func Button(label string, focused bool) string {
	if focused {
		return buttonActive.Render(label)
	}
	return buttonStyle.Render(label)
}

// Buttons renders a row of buttons with the one at focus highlighted.
func Buttons(labels []string, focus int) string {
	rendered := make([]string, len(labels))
	for i, l := range labels {
		rendered[i] = Button(l, i == focus)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Input renders a labelled input line with an optional error under it.
func Input(icon Icon, label, field, errText string) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(Glyph(icon) + " " + label))
	b.WriteString("\n")
	b.WriteString(field)
	if errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(errText))
	}
	return b.String()
}

// Header renders a screen title and subtitle.
func Header(title, subtitle string) string {
	if subtitle == "" {
		return titleStyle.Render(title)
	}
	return titleStyle.Render(title) + "\n" + subtitleStyle.Render(subtitle)
}

// BackButton renders the hint for leaving a pushed screen.
func BackButton() string {
	return hintStyle.Render(Glyph(IconBack) + " esc back")
}

// ScreenWrapper frames a screen: header on top, body, then a footer line
// for notices and key hints.
func ScreenWrapper(width int, header, body, footer string) string {
	parts := []string{header, "", body}
	if footer != "" {
		parts = append(parts, "", footer)
	}
	style := frameStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(strings.Join(parts, "\n"))
}

// Loading renders the spinner shown while the session is not known yet.
func Loading(s spinner.Model, message string) string {
	return s.View() + " " + subtitleStyle.Render(message)
}

// Notice renders a one-line status message, red for errors.
func Notice(text string, isError bool) string {
	if text == "" {
		return ""
	}
	if isError {
		return errorStyle.Render(text)
	}
	return noticeStyle.Render(text)
}

// Dialog renders a cancel/confirm question.
func Dialog(title, message, cancel, confirm string) string {
	body := titleStyle.Render(title) + "\n\n" + message + "\n\n" +
		hintStyle.Render("n: "+cancel+"   y: "+confirm)
	return dialogStyle.Render(body)
}
