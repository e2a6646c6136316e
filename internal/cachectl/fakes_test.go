package cachectl_test

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/Tiliavir/clocktime/internal/cachectl"
	"github.com/Tiliavir/clocktime/internal/cachestore"
)

var errRefused = errors.New("dial tcp 127.0.0.1:3000: connect: connection refused")

type fakeOrigin struct {
	mu    sync.Mutex
	pages map[string]string
	down  bool
	calls []string
}

func newOrigin() *fakeOrigin {
	return &fakeOrigin{pages: map[string]string{
		"/":              "<h1>Clock Time</h1>",
		"/offline":       "<h1>You are offline</h1>",
		"/manifest.json": `{"short_name":"Clock Time"}`,
		"/favicon.ico":   "ico",
		"/world":         "<h1>World</h1>",
		"/app.js":        "console.log('tick')",
	}}
}

func (o *fakeOrigin) Do(_ context.Context, req cachectl.Request) (*cachectl.Response, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, req.Key())
	if o.down {
		return nil, errRefused
	}
	body, ok := o.pages[req.Pathname()]
	if !ok {
		return &cachectl.Response{Status: http.StatusNotFound, Body: []byte("not found")}, nil
	}
	return &cachectl.Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(body),
	}, nil
}

func (o *fakeOrigin) setDown(down bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.down = down
}

func (o *fakeOrigin) set(path, body string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pages[path] = body
}

func (o *fakeOrigin) remove(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pages, path)
}

func (o *fakeOrigin) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

type fakeClient struct {
	id   string
	mu   sync.Mutex
	msgs []cachectl.Outbound
	fail bool
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Post(_ context.Context, msg cachectl.Outbound) error {
	if c.fail {
		return errors.New("client gone")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeClient) received() []cachectl.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]cachectl.Outbound(nil), c.msgs...)
}

type fakeClients struct {
	list   []*fakeClient
	opened []string
}

func (f *fakeClients) MatchAll(context.Context) ([]cachectl.Client, error) {
	out := make([]cachectl.Client, 0, len(f.list))
	for _, c := range f.list {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClients) OpenWindow(_ context.Context, path string) error {
	f.opened = append(f.opened, path)
	return nil
}

type fakeNotifier struct {
	shown  []cachectl.Notification
	closed []string
}

func (f *fakeNotifier) Show(_ context.Context, n cachectl.Notification) error {
	f.shown = append(f.shown, n)
	return nil
}

func (f *fakeNotifier) Close(_ context.Context, id string) error {
	f.closed = append(f.closed, id)
	return nil
}

// flakyStore fails reads on demand.
type flakyStore struct {
	*cachestore.Memory
	failMatch bool
}

func (s *flakyStore) Match(ctx context.Context, key string) (cachestore.Snapshot, bool, error) {
	if s.failMatch {
		return cachestore.Snapshot{}, false, errors.New("disk I/O error")
	}
	return s.Memory.Match(ctx, key)
}
