// Package locations keeps the user's pinned world clock cities.
package locations

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/storage"
)

var (
	ErrUnknownCountry = errors.New("unknown country code")
	ErrAlreadySaved   = errors.New("location already saved")
	ErrNotSaved       = errors.New("location not saved")
)

// Manager holds the saved locations in memory and mirrors them to local storage.
type Manager struct {
	mu    sync.Mutex
	store *storage.Local[[]model.SavedCountry]
}

// NewManager opens the saved locations stored under base.
func NewManager(base string, log *zap.Logger) *Manager {
	return &Manager{store: storage.Open(base, storage.KeySavedLocations, []model.SavedCountry{}, log)}
}

// List returns the saved locations in the order they were added.
func (m *Manager) List() []model.SavedCountry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.store.Get())
}

// Add pins the catalog country with the given code.
func (m *Manager) Add(code, nickname string) (model.SavedCountry, error) {
	c, ok := catalog.FindCountry(code)
	if !ok {
		return model.SavedCountry{}, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := clone(m.store.Get())
	for _, s := range saved {
		if s.Country.Code == c.Code {
			return model.SavedCountry{}, fmt.Errorf("%w: %s", ErrAlreadySaved, c.Code)
		}
	}
	s := model.SavedCountry{Country: c, Nickname: strings.TrimSpace(nickname)}
	m.store.Set(append(saved, s))
	return s, nil
}

// Remove unpins the country with the given code.
func (m *Manager) Remove(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.store.Get()
	kept := make([]model.SavedCountry, 0, len(saved))
	for _, s := range saved {
		if s.Country.Code != code {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(saved) {
		return fmt.Errorf("%w: %s", ErrNotSaved, code)
	}
	m.store.Set(kept)
	return nil
}

// Clocks returns the saved countries, or the whole catalog when nothing is saved.
func (m *Manager) Clocks() []model.SavedCountry {
	saved := m.List()
	if len(saved) > 0 {
		return saved
	}
	all := catalog.Countries()
	out := make([]model.SavedCountry, len(all))
	for i, c := range all {
		out[i] = model.SavedCountry{Country: c}
	}
	return out
}

func clone(in []model.SavedCountry) []model.SavedCountry {
	out := make([]model.SavedCountry, len(in))
	copy(out, in)
	return out
}
