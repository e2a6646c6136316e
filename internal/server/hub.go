package server

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/cachectl"
)

// Event names on the /_sw/events stream.
const (
	EventHello             = "hello"
	EventMessage           = "message"
	EventNotification      = "notification"
	EventNotificationClose = "notification-close"
	EventOpenWindow        = "open-window"
)

const clientBuffer = 16

// Event is one server-sent event.
type Event struct {
	Name string
	Data any
}

// Hub tracks the pages connected to the event stream. It is the
// controller's view of its clients and doubles as the notification
// surface: notifications are delivered to every connected page.
type Hub struct {
	mu            sync.Mutex
	clients       map[string]*hubClient
	order         []string
	notifications map[string]cachectl.Notification
	closed        bool
	log           *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:       map[string]*hubClient{},
		notifications: map[string]cachectl.Notification{},
		log:           log,
	}
}

type hubClient struct {
	id     string
	events chan Event
	hub    *Hub
}

func (c *hubClient) ID() string { return c.id }

func (c *hubClient) Post(_ context.Context, msg cachectl.Outbound) error {
	return c.hub.send(c.id, Event{Name: EventMessage, Data: msg})
}

// Connect registers a new page. The returned channel is closed when the
// page is disconnected or the hub shuts down.
func (h *Hub) Connect() (id string, events <-chan Event, disconnect func()) {
	c := &hubClient{id: uuid.NewString(), events: make(chan Event, clientBuffer), hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.events)
		return c.id, c.events, func() {}
	}
	h.clients[c.id] = c
	h.order = append(h.order, c.id)
	h.log.Debug("client connected", zap.String("client_id", c.id), zap.Int("clients", len(h.clients)))
	return c.id, c.events, func() { h.drop(c.id) }
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	for i, o := range h.order {
		if o == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	close(c.events)
	h.log.Debug("client disconnected", zap.String("client_id", id), zap.Int("clients", len(h.clients)))
}

// Len reports the number of connected pages.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown disconnects every page so their streams end.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	ids := append([]string(nil), h.order...)
	h.closed = true
	h.mu.Unlock()
	for _, id := range ids {
		h.drop(id)
	}
}

// send delivers ev without blocking; a page that stops reading is dropped.
func (h *Hub) send(id string, ev Event) error {
	h.mu.Lock()
	c, ok := h.clients[id]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("client %s is not connected", id)
	}
	select {
	case c.events <- ev:
		h.mu.Unlock()
		return nil
	default:
		h.mu.Unlock()
		h.drop(id)
		return fmt.Errorf("client %s is not keeping up", id)
	}
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	ids := append([]string(nil), h.order...)
	h.mu.Unlock()
	for _, id := range ids {
		if err := h.send(id, ev); err != nil {
			h.log.Warn("deliver event", zap.String("event", ev.Name), zap.Error(err))
		}
	}
}

// MatchAll implements cachectl.Clients.
func (h *Hub) MatchAll(context.Context) ([]cachectl.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]cachectl.Client, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.clients[id])
	}
	return out, nil
}

// OpenWindow asks the most recently connected page to show path.
func (h *Hub) OpenWindow(_ context.Context, path string) error {
	h.mu.Lock()
	if len(h.order) == 0 {
		h.mu.Unlock()
		return cachectl.ErrNoClients
	}
	id := h.order[len(h.order)-1]
	h.mu.Unlock()
	return h.send(id, Event{Name: EventOpenWindow, Data: cachectl.OpenWindow{URL: path}})
}

// Show implements cachectl.Notifier.
func (h *Hub) Show(_ context.Context, n cachectl.Notification) error {
	h.mu.Lock()
	h.notifications[n.ID] = n
	h.mu.Unlock()
	h.broadcast(Event{Name: EventNotification, Data: n})
	return nil
}

// Close implements cachectl.Notifier.
func (h *Hub) Close(_ context.Context, id string) error {
	h.mu.Lock()
	_, ok := h.notifications[id]
	delete(h.notifications, id)
	h.mu.Unlock()
	if ok {
		h.broadcast(Event{Name: EventNotificationClose, Data: map[string]string{"id": id}})
	}
	return nil
}

// Notifications returns the notifications that have not been closed.
func (h *Hub) Notifications() []cachectl.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]cachectl.Notification, 0, len(h.notifications))
	for _, n := range h.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Data.DateOfArrival != out[j].Data.DateOfArrival {
			return out[i].Data.DateOfArrival < out[j].Data.DateOfArrival
		}
		return out[i].ID < out[j].ID
	})
	return out
}
