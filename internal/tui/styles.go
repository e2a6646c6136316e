package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/clocktime/internal/model"
)

const cardWidth = 28

type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	card     lipgloss.Style
	local    lipgloss.Style
	name     lipgloss.Style
	clock    lipgloss.Style
	muted    lipgloss.Style
	footer   lipgloss.Style
}

// newStyles derives the palette from a theme so the terminal matches the
// colours picked for the web page.
func newStyles(t model.Theme) styles {
	primary := lipgloss.Color(t.Primary)
	secondary := lipgloss.Color(t.Secondary)
	muted := lipgloss.Color("#666666")

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Padding(0, 1),
		subtitle: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Width(cardWidth).
			Padding(0, 1),
		local: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Width(cardWidth).
			Padding(0, 1),
		name: lipgloss.NewStyle().
			Bold(true),
		clock: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		muted: lipgloss.NewStyle().
			Foreground(muted),
		footer: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
	}
}
