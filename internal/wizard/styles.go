package wizard

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette, matching the severity levels a reviewer needs to
// distinguish at a glance.
var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorWarning = lipgloss.Color("#FFB020")
	colorError   = lipgloss.Color("#FF4672")
	colorInfo    = lipgloss.Color("#00D9FF")
	colorSubtle  = lipgloss.Color("#777777")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorInfo).
				Bold(true).
				MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6AD5")).
			Bold(true)

	unselectedStyle = lipgloss.NewStyle().
				Foreground(colorSubtle)

	focusedPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6AD5")).
				Bold(true)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true).
			MarginTop(1)
)

const (
	iconAck     = "✓"
	iconPending = "○"
	iconBlocked = "✗"
	iconArrow   = "▶"
)

func renderHeader(text string) string {
	return headerStyle.Render(text)
}

func renderSectionHeader(text string) string {
	return sectionHeaderStyle.Render(text)
}

func renderSuccess(text string) string {
	return successStyle.Render(iconAck + " " + text)
}

func renderWarning(text string) string {
	return warningStyle.Render("! " + text)
}

func renderError(text string) string {
	return errorStyle.Render(iconBlocked + " " + text)
}

func renderStatusBar(text string) string {
	return statusBarStyle.Render(text)
}
