// Package alarm manages the local-only alarm list.
package alarm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/storage"
	"github.com/Tiliavir/clocktime/internal/timecalc"
)

// DefaultLabel is used when an alarm is added without a label.
const DefaultLabel = "Alarm"

// ErrNotFound is returned when no alarm has the requested id.
var ErrNotFound = errors.New("alarm not found")

// Input describes a new alarm.
type Input struct {
	Time     string
	Timezone string
	Label    string
	Days     []string
}

// Upcoming pairs an alarm with its next ring time.
type Upcoming struct {
	Alarm model.Alarm
	At    time.Time
}

// Manager holds the alarm list in memory and mirrors it to local storage.
type Manager struct {
	mu    sync.Mutex
	store *storage.Local[[]model.Alarm]
	now   func() time.Time
}

// NewManager opens the alarm list stored under base.
func NewManager(base string, log *zap.Logger) *Manager {
	return &Manager{
		store: storage.Open(base, storage.KeyAlarms, []model.Alarm{}, log),
		now:   time.Now,
	}
}

// List returns a copy of all alarms in insertion order.
func (m *Manager) List() []model.Alarm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.store.Get())
}

// Add validates in and appends a new enabled alarm.
func (m *Manager) Add(in Input) (model.Alarm, error) {
	if _, _, err := timecalc.ParseHHMM(in.Time); err != nil {
		return model.Alarm{}, err
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil || in.Timezone == "" {
		return model.Alarm{}, fmt.Errorf("invalid timezone %q", in.Timezone)
	}
	days := normalizeDays(in.Days)
	if _, err := timecalc.ParseDays(days); err != nil {
		return model.Alarm{}, err
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = DefaultLabel
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a := model.Alarm{
		ID:       timecalc.GenerateID(m.now()),
		Time:     strings.TrimSpace(in.Time),
		Timezone: in.Timezone,
		Label:    label,
		Enabled:  true,
		Days:     days,
	}
	m.store.Set(append(clone(m.store.Get()), a))
	return cloneAlarm(a), nil
}

// Toggle flips the enabled flag of the alarm with the given id.
func (m *Manager) Toggle(id string) (model.Alarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alarms := clone(m.store.Get())
	for i := range alarms {
		if alarms[i].ID == id {
			alarms[i].Enabled = !alarms[i].Enabled
			m.store.Set(alarms)
			return cloneAlarm(alarms[i]), nil
		}
	}
	return model.Alarm{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Delete removes the alarm with the given id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	alarms := m.store.Get()
	kept := make([]model.Alarm, 0, len(alarms))
	for _, a := range alarms {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(alarms) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.store.Set(kept)
	return nil
}

// Next returns the next ring time of every enabled alarm, soonest first.
// Alarms whose schedule cannot be computed are skipped.
func (m *Manager) Next(now time.Time) []Upcoming {
	var out []Upcoming
	for _, a := range m.List() {
		if !a.Enabled {
			continue
		}
		at, err := timecalc.NextOccurrence(a.Time, a.Timezone, a.Days, now)
		if err != nil {
			continue
		}
		out = append(out, Upcoming{Alarm: a, At: at})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []string{timecalc.Daily}
	}
	return out
}

func clone(in []model.Alarm) []model.Alarm {
	out := make([]model.Alarm, len(in))
	for i, a := range in {
		out[i] = cloneAlarm(a)
	}
	return out
}

func cloneAlarm(a model.Alarm) model.Alarm {
	a.Days = append([]string(nil), a.Days...)
	return a
}
