package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	bannerTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f7941e"))
	bannerSub = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f87ff"))
	bannerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
)

// banner renders the startup banner shown in console mode.
func banner() string {
	return bannerBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		bannerTitle.Render("Vue Cinema Ticket Watcher"),
		bannerSub.Render("ticket-watcher "+Version),
	))
}
