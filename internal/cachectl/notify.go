package cachectl

import (
	"context"
	"errors"
)

const (
	NotificationTitle       = "Clock Time"
	DefaultNotificationBody = "Clock Time notification"

	ActionExplore = "explore"
	ActionClose   = "close"
)

// Notification is a user-visible alert raised by a push.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Icon    string           `json:"icon"`
	Badge   string           `json:"badge"`
	Vibrate []int            `json:"vibrate"`
	Data    NotificationData `json:"data"`
	Actions []Action         `json:"actions"`
}

type NotificationData struct {
	DateOfArrival int64 `json:"dateOfArrival"`
	PrimaryKey    int   `json:"primaryKey"`
}

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Client is one connected page.
type Client interface {
	ID() string
	Post(ctx context.Context, msg Outbound) error
}

// Clients enumerates connected pages and can bring one to the front.
type Clients interface {
	MatchAll(ctx context.Context) ([]Client, error)
	OpenWindow(ctx context.Context, path string) error
}

// Notifier shows and closes notifications.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
	Close(ctx context.Context, id string) error
}

// ErrNoClients is returned when a window cannot be opened because no page is connected.
var ErrNoClients = errors.New("no connected clients")

type nobody struct{}

func (nobody) MatchAll(context.Context) ([]Client, error) { return nil, nil }
func (nobody) OpenWindow(context.Context, string) error   { return ErrNoClients }
func (nobody) Show(context.Context, Notification) error   { return nil }
func (nobody) Close(context.Context, string) error        { return nil }

func newNotification(id, body string, now int64) Notification {
	if body == "" {
		body = DefaultNotificationBody
	}
	return Notification{
		ID:      id,
		Title:   NotificationTitle,
		Body:    body,
		Icon:    "/icons/icon-192x192.png",
		Badge:   "/icons/icon-72x72.png",
		Vibrate: []int{200, 100, 200},
		Data:    NotificationData{DateOfArrival: now, PrimaryKey: 1},
		Actions: []Action{
			{Action: ActionExplore, Title: "View Clock", Icon: "/icons/action-view.png"},
			{Action: ActionClose, Title: "Dismiss", Icon: "/icons/action-close.png"},
		},
	}
}
