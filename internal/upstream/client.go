// Package upstream is the network side of the cache controller: it
// forwards intercepted requests to the origin.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/Tiliavir/clocktime/internal/cachectl"
)

// DefaultMaxBody caps how much of a response is read into memory.
const DefaultMaxBody int64 = 10 << 20

// ErrBodyTooLarge is returned when a response exceeds the configured cap.
var ErrBodyTooLarge = errors.New("response body too large")

// hopHeaders are connection-scoped and never forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Config describes the origin.
type Config struct {
	BaseURL string
	Timeout time.Duration
	MaxBody int64
	// OAuth2, when set, authenticates every request with a client
	// credentials token.
	OAuth2 *OAuth2
}

type OAuth2 struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Client forwards requests to the origin. It never follows redirects so the
// caller sees them as responses.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	maxBody    int64
}

// New creates a client for cfg. ctx scopes token fetches when OAuth2 is used.
func New(ctx context.Context, cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing upstream url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("upstream url %q must be http or https", cfg.BaseURL)
	}

	httpClient := &http.Client{}
	if cfg.OAuth2 != nil {
		cc := clientcredentials.Config{
			ClientID:     cfg.OAuth2.ClientID,
			ClientSecret: cfg.OAuth2.ClientSecret,
			TokenURL:     cfg.OAuth2.TokenURL,
			Scopes:       cfg.OAuth2.Scopes,
		}
		httpClient = cc.Client(ctx)
	}
	httpClient.Timeout = cfg.Timeout
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &Client{base: base, httpClient: httpClient, maxBody: maxBody}, nil
}

// Do implements cachectl.Network.
func (c *Client) Do(ctx context.Context, r cachectl.Request) (*cachectl.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+r.Path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	stripHop(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%s %s: %w (limit %d bytes)", method, r.Path, ErrBodyTooLarge, c.maxBody)
	}

	header := resp.Header.Clone()
	stripHop(header)
	header.Del("Content-Length")
	return &cachectl.Response{
		Status: resp.StatusCode,
		Header: header,
		Body:   data,
		Source: cachectl.FromNetwork,
	}, nil
}

func stripHop(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}
