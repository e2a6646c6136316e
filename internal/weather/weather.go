// Package weather provides current-conditions reports for world clock locations.
package weather

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Tiliavir/clocktime/internal/model"
)

// Provider reports the current weather for a country code.
type Provider interface {
	Current(ctx context.Context, countryCode string) (model.Weather, error)
}

type condition struct {
	description string
	icon        string
	temp        int
}

var conditions = []condition{
	{"Sunny", "☀️", 25},
	{"Partly Cloudy", "⛅", 22},
	{"Cloudy", "☁️", 18},
	{"Rainy", "🌧️", 15},
	{"Snowy", "❄️", -2},
	{"Thunderstorm", "⛈️", 20},
}

// Simulated is a stand-in Provider that draws random conditions.
// It ignores the country code.
type Simulated struct {
	Delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulated returns a Simulated provider seeded from seed.
func NewSimulated(seed uint64, delay time.Duration) *Simulated {
	return &Simulated{Delay: delay, rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Current waits for the configured delay and returns a random report.
func (s *Simulated) Current(ctx context.Context, _ string) (model.Weather, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.Weather{}, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	c := conditions[s.rnd.IntN(len(conditions))]
	return model.Weather{
		Temperature: c.temp + s.rnd.IntN(10) - 5,
		Description: c.description,
		Humidity:    s.rnd.IntN(40) + 40,
		WindSpeed:   s.rnd.IntN(20) + 5,
		Icon:        c.icon,
	}, nil
}
