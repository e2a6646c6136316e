package cachectl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/clocktime/internal/cachestore"
)

var (
	// ErrOffline means the network failed and no cached or offline copy exists.
	ErrOffline = errors.New("offline and no cached response")
	// ErrNetwork wraps transport failures that have no fallback.
	ErrNetwork = errors.New("network request failed and no cache available")
	// ErrInstallFailed wraps the cause of an aborted install.
	ErrInstallFailed = errors.New("install failed")
	// ErrInvalidState is returned for lifecycle events out of order.
	ErrInvalidState = errors.New("invalid controller state")
	// ErrInvalidMessage is returned for malformed or unknown page messages.
	ErrInvalidMessage = errors.New("invalid message")
)

// Options configures a Controller. Storage and Network are required.
type Options struct {
	Version  string
	Storage  cachestore.Storage
	Network  Network
	Clients  Clients
	Notifier Notifier
	Logger   *zap.Logger
	Metrics  *Metrics
	Now      func() time.Time
}

// Controller owns one cache version. Lifecycle events are serialized;
// fetches run concurrently and only touch the store.
type Controller struct {
	version  string
	buckets  Buckets
	store    cachestore.Storage
	net      Network
	clients  Clients
	notifier Notifier
	log      *zap.Logger
	metrics  *Metrics
	now      func() time.Time

	lifecycle sync.Mutex
	state     atomic.Int32
}

// New returns an uninstalled controller.
func New(opts Options) (*Controller, error) {
	if opts.Storage == nil {
		return nil, errors.New("cachectl: storage is required")
	}
	if opts.Network == nil {
		return nil, errors.New("cachectl: network is required")
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Clients == nil {
		opts.Clients = nobody{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nobody{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		version:  opts.Version,
		buckets:  BucketsFor(opts.Version),
		store:    opts.Storage,
		net:      opts.Network,
		clients:  opts.Clients,
		notifier: opts.Notifier,
		log:      opts.Logger.With(zap.String("cache_version", opts.Version)),
		metrics:  opts.Metrics,
		now:      opts.Now,
	}, nil
}

func (c *Controller) State() State     { return State(c.state.Load()) }
func (c *Controller) Version() string  { return c.version }
func (c *Controller) Buckets() Buckets { return c.buckets }

func (c *Controller) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		c.log.Info("cache controller state changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", s),
		)
	}
}

// Install populates the static bucket from the manifest and opens the
// dynamic bucket. Any failed or non-200 fetch aborts the install before
// anything is written and the controller returns to Uninstalled. Installing
// an already installed version is a no-op, including one whose complete
// static bucket survived a restart of a persistent store.
func (c *Controller) Install(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if s := c.State(); s == Waiting || s == Active {
		return nil
	}
	c.setState(Installing)

	if c.restored(ctx) {
		c.setState(Waiting)
		c.metrics.event("install", "restored")
		c.log.Info("installation restored", zap.String("bucket", c.buckets.Static))
		return nil
	}

	c.log.Info("installing", zap.Strings("manifest", StaticManifest))

	if err := c.populate(ctx); err != nil {
		c.setState(Uninstalled)
		c.metrics.event("install", "failed")
		c.log.Warn("install failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	c.setState(Waiting)
	c.metrics.event("install", "ok")
	c.log.Info("installation complete")
	return nil
}

// restored reports whether the static bucket of this version already holds
// every manifest entry.
func (c *Controller) restored(ctx context.Context) bool {
	ok, err := c.store.Has(ctx, c.buckets.Static)
	if err != nil {
		c.log.Warn("check persisted static bucket", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	static, err := c.store.Open(ctx, c.buckets.Static)
	if err != nil {
		c.log.Warn("open persisted static bucket", zap.Error(err))
		return false
	}
	for _, path := range StaticManifest {
		_, found, err := static.Match(ctx, Request{Method: http.MethodGet, Path: path}.Key())
		if err != nil || !found {
			return false
		}
	}
	if _, err := c.store.Open(ctx, c.buckets.Dynamic); err != nil {
		c.log.Warn("open dynamic bucket", zap.Error(err))
		return false
	}
	return true
}

func (c *Controller) populate(ctx context.Context) error {
	snaps := make([]cachestore.Snapshot, len(StaticManifest))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range StaticManifest {
		g.Go(func() error {
			resp, err := c.net.Do(gctx, Request{Method: http.MethodGet, Path: path})
			if err != nil {
				return fmt.Errorf("fetch %s: %w", path, err)
			}
			if resp.Status != http.StatusOK {
				return fmt.Errorf("fetch %s: unexpected status %d", path, resp.Status)
			}
			snaps[i] = c.snapshot(resp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	static, err := c.store.Open(ctx, c.buckets.Static)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.buckets.Static, err)
	}
	for i, path := range StaticManifest {
		req := Request{Method: http.MethodGet, Path: path}
		if err := static.Put(ctx, req.Key(), snaps[i]); err != nil {
			if _, derr := c.store.Delete(ctx, c.buckets.Static); derr != nil {
				c.log.Warn("discard partial static bucket", zap.Error(derr))
			}
			return fmt.Errorf("store %s: %w", path, err)
		}
	}

	if _, err := c.store.Open(ctx, c.buckets.Dynamic); err != nil {
		return fmt.Errorf("open %s: %w", c.buckets.Dynamic, err)
	}
	return nil
}

// Activate deletes every bucket not owned by the current version and moves
// a waiting install to Active. Pages are told when stale buckets went away.
func (c *Controller) Activate(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.activate(ctx)
}

func (c *Controller) activate(ctx context.Context) error {
	if s := c.State(); s != Waiting && s != Active {
		return fmt.Errorf("%w: cannot activate while %s", ErrInvalidState, s)
	}

	names, err := c.store.Names(ctx)
	if err != nil {
		c.metrics.event("activate", "failed")
		return fmt.Errorf("list buckets: %w", err)
	}
	var removed []string
	for _, name := range names {
		if c.buckets.Owns(name) {
			continue
		}
		ok, err := c.store.Delete(ctx, name)
		if err != nil {
			c.metrics.event("activate", "failed")
			return fmt.Errorf("delete bucket %s: %w", name, err)
		}
		if ok {
			removed = append(removed, name)
		}
	}

	c.setState(Active)
	c.metrics.event("activate", "ok")
	c.log.Info("activation complete", zap.Strings("deleted", removed))

	if len(removed) > 0 {
		c.broadcast(ctx, CacheUpdated{})
	}
	return nil
}

// Sync handles a background sync signal. Only SyncTag is acted on; it
// returns the number of pages told that sync succeeded.
func (c *Controller) Sync(ctx context.Context, tag string) int {
	c.log.Info("background sync triggered", zap.String("tag", tag))
	if tag != SyncTag {
		c.log.Debug("ignoring unknown sync tag", zap.String("tag", tag))
		return 0
	}
	return c.broadcast(ctx, SyncSuccess{})
}

// Push shows a notification whose body is payload, or the default copy
// when payload is empty.
func (c *Controller) Push(ctx context.Context, payload []byte) (Notification, error) {
	n := newNotification(uuid.NewString(), string(payload), c.now().UnixMilli())
	if err := c.notifier.Show(ctx, n); err != nil {
		return Notification{}, fmt.Errorf("show notification: %w", err)
	}
	c.metrics.notification("shown")
	c.log.Info("push notification shown", zap.String("id", n.ID))
	return n, nil
}

// NotificationClick closes the notification and, for the explore action,
// opens or focuses the root page.
func (c *Controller) NotificationClick(ctx context.Context, id, action string) error {
	c.log.Info("notification clicked", zap.String("id", id), zap.String("action", action))
	c.metrics.notification("clicked")
	if err := c.notifier.Close(ctx, id); err != nil {
		c.log.Warn("close notification", zap.String("id", id), zap.Error(err))
	}
	if action != ActionExplore {
		return nil
	}
	if err := c.clients.OpenWindow(ctx, "/"); err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	return nil
}

// Message handles a raw page message.
func (c *Controller) Message(ctx context.Context, raw []byte) error {
	msg, err := DecodeMessage(raw)
	if err != nil {
		c.log.Warn("rejected message", zap.Error(err))
		return err
	}

	switch m := msg.(type) {
	case SkipWaiting:
		c.metrics.message("in", TypeSkipWaiting)
		return c.skipWaiting(ctx)
	case SyncData:
		c.metrics.message("in", TypeSyncData)
		c.log.Info("syncing user data", zap.String("key", m.Key), zap.Int("bytes", len(m.Data)))
		c.broadcast(ctx, SyncSuccess{Key: m.Key})
	}
	return nil
}

func (c *Controller) skipWaiting(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	if c.State() != Waiting {
		c.log.Debug("skip waiting with nothing waiting", zap.Stringer("state", c.State()))
		return nil
	}
	return c.activate(ctx)
}

// broadcast posts msg to every connected page. Failures are logged.
func (c *Controller) broadcast(ctx context.Context, msg Outbound) int {
	clients, err := c.clients.MatchAll(ctx)
	if err != nil {
		c.log.Error("list clients", zap.Error(err))
		return 0
	}
	sent := 0
	for _, cl := range clients {
		if err := cl.Post(ctx, msg); err != nil {
			c.log.Warn("post message",
				zap.String("client_id", cl.ID()),
				zap.String("type", string(msg.MessageType())),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	c.metrics.message("out", msg.MessageType())
	return sent
}
