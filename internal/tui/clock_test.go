package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/model"
)

var noon = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, use24h bool) Model {
	t.Helper()
	jp, ok := catalog.FindCountry("JP")
	if !ok {
		t.Fatal("JP missing from catalog")
	}
	return New(Options{
		Location: model.LocationInfo{DisplayName: "🇯🇵 Japan (Your Location)", IsCurrentLocation: true, Timezone: jp.Timezone},
		Clocks: func() []model.SavedCountry {
			return []model.SavedCountry{{Country: jp, Nickname: "Tokyo office"}}
		},
		Use24h: use24h,
		Now:    func() time.Time { return noon },
	})
}

func TestViewShowsClocks(t *testing.T) {
	m := newTestModel(t, true)
	view := m.View()

	for _, want := range []string{"Clock Time", "Japan (Your Location)", "Tokyo office", "21:00:00", "Monday, January 15, 2024", "UTC+09:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestToggleFormat(t *testing.T) {
	m := newTestModel(t, true)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if cmd != nil {
		t.Fatal("toggle should not schedule a command")
	}
	m = updated.(Model)
	if m.Use24h() {
		t.Fatal("expected 12h format after toggle")
	}
	if !strings.Contains(m.View(), "09:00:00 PM") {
		t.Errorf("expected 12h time in view:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, true)
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected QuitMsg", k)
		}
	}
}

func TestTickAdvancesTime(t *testing.T) {
	now := noon
	m := newTestModel(t, true)
	m.opts.Now = func() time.Time { return now }

	now = noon.Add(90 * time.Second)
	updated, cmd := m.Update(tickMsg(now))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
	if !strings.Contains(updated.View(), "21:01:30") {
		t.Errorf("expected advanced time:\n%s", updated.View())
	}
}

func TestGridWrapsToWidth(t *testing.T) {
	m := New(Options{Now: func() time.Time { return noon }})
	narrow, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 40})
	wide, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})

	if lines(narrow.View()) <= lines(wide.View()) {
		t.Errorf("narrow terminal should stack more rows: narrow=%d wide=%d", lines(narrow.View()), lines(wide.View()))
	}
}

func TestEmptyClocks(t *testing.T) {
	m := New(Options{
		Clocks: func() []model.SavedCountry { return nil },
		Now:    func() time.Time { return noon },
	})
	if !strings.Contains(m.View(), "No locations.") {
		t.Errorf("expected empty message:\n%s", m.View())
	}
}

func lines(s string) int { return strings.Count(s, "\n") + 1 }
