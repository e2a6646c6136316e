package cachectl

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/cachestore"
)

// Fetch answers an intercepted request. Before activation, and for any
// method other than GET, the request goes straight to the network.
func (c *Controller) Fetch(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Method != http.MethodGet || c.State() != Active {
		return c.passthrough(ctx, req)
	}
	if req.Navigate {
		return c.networkFirst(ctx, req)
	}
	return c.cacheFirst(ctx, req)
}

func (c *Controller) passthrough(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.net.Do(ctx, req)
	if err != nil {
		c.metrics.fetch("passthrough", "error")
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	resp.Source = FromNetwork
	c.metrics.fetch("passthrough", string(FromNetwork))
	return resp, nil
}

// networkFirst serves navigations: network, then cache, then the offline page.
func (c *Controller) networkFirst(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.net.Do(ctx, req)
	if err == nil {
		resp.Source = FromNetwork
		if resp.Status == http.StatusOK {
			c.put(ctx, c.buckets.Dynamic, req, resp)
		}
		c.metrics.fetch("navigate", string(FromNetwork))
		return resp, nil
	}

	c.log.Info("navigation network failure", zap.String("path", req.Path), zap.Error(err))
	if snap, ok := c.match(ctx, req.Key()); ok {
		c.metrics.fetch("navigate", string(FromCache))
		return fromSnapshot(snap, FromCache), nil
	}
	return c.offline(ctx, "navigate", err)
}

// cacheFirst serves everything else: cache, then network, then the offline
// page for documents only.
func (c *Controller) cacheFirst(ctx context.Context, req Request) (*Response, error) {
	if snap, ok := c.match(ctx, req.Key()); ok {
		c.metrics.fetch("cache_first", string(FromCache))
		return fromSnapshot(snap, FromCache), nil
	}

	resp, err := c.net.Do(ctx, req)
	if err != nil {
		if req.Destination == DestinationDocument {
			return c.offline(ctx, "cache_first", err)
		}
		c.metrics.fetch("cache_first", "error")
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	resp.Source = FromNetwork
	if resp.Status == http.StatusOK {
		bucket := c.buckets.Dynamic
		if inManifest(req.Pathname()) {
			bucket = c.buckets.Static
		}
		c.put(ctx, bucket, req, resp)
	}
	c.metrics.fetch("cache_first", string(FromNetwork))
	return resp, nil
}

func (c *Controller) offline(ctx context.Context, mode string, cause error) (*Response, error) {
	key := Request{Method: http.MethodGet, Path: OfflinePath}.Key()
	if snap, ok := c.match(ctx, key); ok {
		c.metrics.fetch(mode, string(FromOffline))
		return fromSnapshot(snap, FromOffline), nil
	}
	c.metrics.fetch(mode, "error")
	return nil, fmt.Errorf("%w: %w", ErrOffline, cause)
}

// match looks key up across all buckets. Storage errors count as a miss.
func (c *Controller) match(ctx context.Context, key string) (cachestore.Snapshot, bool) {
	snap, ok, err := c.store.Match(ctx, key)
	if err != nil {
		c.log.Warn("cache match failed", zap.String("key", key), zap.Error(err))
		return cachestore.Snapshot{}, false
	}
	return snap, ok
}

// put stores a copy of resp. Storage errors are logged and dropped.
func (c *Controller) put(ctx context.Context, bucket string, req Request, resp *Response) {
	b, err := c.store.Open(ctx, bucket)
	if err == nil {
		err = b.Put(ctx, req.Key(), c.snapshot(resp))
	}
	if err != nil {
		c.log.Warn("cache put failed",
			zap.String("bucket", bucket),
			zap.String("key", req.Key()),
			zap.Error(err),
		)
	}
}

func (c *Controller) snapshot(resp *Response) cachestore.Snapshot {
	return cachestore.Snapshot{
		Status:   resp.Status,
		Header:   resp.Header.Clone(),
		Body:     append([]byte(nil), resp.Body...),
		StoredAt: c.now(),
	}
}
