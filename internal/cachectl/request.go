package cachectl

import (
	"context"
	"net/http"
	"strings"

	"github.com/Tiliavir/clocktime/internal/cachestore"
)

// DestinationDocument marks requests for a full page.
const DestinationDocument = "document"

// Request is an intercepted same-origin request. Path is origin relative and
// may carry a query string.
type Request struct {
	Method      string
	Path        string
	Header      http.Header
	Body        []byte
	Navigate    bool
	Destination string
}

// Key identifies the request inside a cache bucket.
func (r Request) Key() string {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	return method + " " + r.Path
}

// Pathname is Path without its query.
func (r Request) Pathname() string {
	p, _, _ := strings.Cut(r.Path, "?")
	return p
}

// Source says where a response came from.
type Source string

const (
	FromNetwork Source = "network"
	FromCache   Source = "cache"
	FromOffline Source = "offline"
)

// Response is what the controller hands back for a request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Source Source
}

// Network performs requests against the origin. It returns an error only
// when no response was produced; non-2xx statuses are responses.
type Network interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// NetworkFunc adapts a function to Network.
type NetworkFunc func(ctx context.Context, req Request) (*Response, error)

func (f NetworkFunc) Do(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

func fromSnapshot(s cachestore.Snapshot, src Source) *Response {
	return &Response{Status: s.Status, Header: s.Header.Clone(), Body: s.Body, Source: src}
}
