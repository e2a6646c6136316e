// Package tui is the terminal world clock behind `clocktime watch`.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/timecalc"
)

type tickMsg time.Time

var keys = struct {
	Toggle key.Binding
	Quit   key.Binding
}{
	Toggle: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "12/24h")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// Options configures the clock.
type Options struct {
	// Location is the detected local position shown in the header.
	Location model.LocationInfo
	// Clocks lists the cards to draw. It is called on every tick so changes
	// to saved locations show up without a restart.
	Clocks func() []model.SavedCountry
	Theme  model.Theme
	Use24h bool
	Now    func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	opts   Options
	styles styles
	now    time.Time
	use24h bool
	width  int
}

func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Theme.ID == "" {
		opts.Theme, _ = catalog.FindTheme(catalog.DefaultThemeID)
	}
	if opts.Clocks == nil {
		opts.Clocks = func() []model.SavedCountry {
			var out []model.SavedCountry
			for _, c := range catalog.Countries() {
				out = append(out, model.SavedCountry{Country: c})
			}
			return out
		}
	}
	return Model{
		opts:   opts,
		styles: newStyles(opts.Theme),
		now:    opts.Now(),
		use24h: opts.Use24h,
		width:  80,
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			m.use24h = !m.use24h
			return m, nil
		}

	case tickMsg:
		m.now = m.opts.Now()
		return m, tickCmd()
	}
	return m, nil
}

// Use24h reports the current clock format.
func (m Model) Use24h() bool { return m.use24h }

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Clock Time"))
	b.WriteString("\n")
	loc := m.opts.Location
	header := loc.DisplayName
	if loc.Timezone != "" {
		header += "  " + timecalc.FormatClock(m.now, loc.Timezone, m.use24h) +
			"  " + timecalc.FormatDate(m.now, loc.Timezone)
	}
	b.WriteString(m.styles.subtitle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(m.grid())
	b.WriteString("\n")
	b.WriteString(m.styles.footer.Render(m.help()))
	return b.String()
}

func (m Model) grid() string {
	perRow := m.width / (cardWidth + 4)
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	var row []string
	for _, sc := range m.opts.Clocks() {
		row = append(row, m.card(sc))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	if len(rows) == 0 {
		return m.styles.muted.Render("  No locations.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) card(sc model.SavedCountry) string {
	tz := sc.Country.Timezone
	lines := []string{
		m.styles.name.Render(strings.TrimSpace(sc.Country.Flag + " " + sc.DisplayName())),
		m.styles.clock.Render(timecalc.FormatClock(m.now, tz, m.use24h)),
		timecalc.FormatDate(m.now, tz),
		m.styles.muted.Render(tz + " " + timecalc.OffsetLabel(m.now, tz)),
	}
	style := m.styles.card
	if tz == m.opts.Location.Timezone {
		style = m.styles.local
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) help() string {
	format := "24h"
	if !m.use24h {
		format = "12h"
	}
	return keys.Toggle.Help().Key + " " + keys.Toggle.Help().Desc + " (" + format + ") • " +
		keys.Quit.Help().Key + " " + keys.Quit.Help().Desc
}
