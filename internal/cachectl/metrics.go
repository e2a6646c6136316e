package cachectl

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts controller activity. A nil *Metrics records nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	lifecycle     *prometheus.CounterVec
	messages      *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewMetrics registers the controller collectors with registerer, or the
// default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clocktime_cache_fetch_total",
			Help: "Intercepted requests by how they were answered.",
		}, []string{"mode", "source"}),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clocktime_cache_lifecycle_total",
			Help: "Install and activate events by outcome.",
		}, []string{"event", "outcome"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clocktime_cache_messages_total",
			Help: "Messages exchanged with pages by type and direction.",
		}, []string{"direction", "type"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clocktime_cache_notifications_total",
			Help: "Notifications shown and clicked.",
		}, []string{"event"}),
	}
	registerer.MustRegister(m.fetches, m.lifecycle, m.messages, m.notifications)
	return m
}

func (m *Metrics) fetch(mode, source string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(mode, source).Inc()
}

func (m *Metrics) event(event, outcome string) {
	if m == nil {
		return
	}
	m.lifecycle.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) message(direction string, t MessageType) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(direction, string(t)).Inc()
}

func (m *Metrics) notification(event string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event).Inc()
}
