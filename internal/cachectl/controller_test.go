package cachectl_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tiliavir/clocktime/internal/cachectl"
	"github.com/Tiliavir/clocktime/internal/cachestore"
)

var arrival = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

type harness struct {
	ctl      *cachectl.Controller
	origin   *fakeOrigin
	store    *flakyStore
	clients  *fakeClients
	notifier *fakeNotifier
	reg      *prometheus.Registry
}

func newHarness(t *testing.T, version string) *harness {
	t.Helper()
	h := &harness{
		origin:   newOrigin(),
		store:    &flakyStore{Memory: cachestore.NewMemory()},
		clients:  &fakeClients{list: []*fakeClient{{id: "a"}, {id: "b"}}},
		notifier: &fakeNotifier{},
		reg:      prometheus.NewRegistry(),
	}
	ctl, err := cachectl.New(cachectl.Options{
		Version:  version,
		Storage:  h.store,
		Network:  h.origin,
		Clients:  h.clients,
		Notifier: h.notifier,
		Logger:   zaptest.NewLogger(t),
		Metrics:  cachectl.NewMetrics(h.reg),
		Now:      func() time.Time { return arrival },
	})
	require.NoError(t, err)
	h.ctl = ctl
	return h
}

func (h *harness) activate(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.ctl.Install(ctx))
	require.NoError(t, h.ctl.Activate(ctx))
	require.Equal(t, cachectl.Active, h.ctl.State())
}

func get(path string) cachectl.Request {
	return cachectl.Request{Method: http.MethodGet, Path: path}
}

func navigate(path string) cachectl.Request {
	return cachectl.Request{Method: http.MethodGet, Path: path, Navigate: true, Destination: cachectl.DestinationDocument}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := cachectl.New(cachectl.Options{Network: newOrigin()})
	assert.Error(t, err)
	_, err = cachectl.New(cachectl.Options{Storage: cachestore.NewMemory()})
	assert.Error(t, err)

	ctl, err := cachectl.New(cachectl.Options{Storage: cachestore.NewMemory(), Network: newOrigin()})
	require.NoError(t, err)
	assert.Equal(t, cachectl.DefaultVersion, ctl.Version())
	assert.Equal(t, cachectl.Uninstalled, ctl.State())
}

func TestBucketsFor(t *testing.T) {
	b := cachectl.BucketsFor("1.2.0")
	assert.Equal(t, "clock-time-v1.2.0", b.Main)
	assert.Equal(t, "clock-time-static-v1.2.0", b.Static)
	assert.Equal(t, "clock-time-dynamic-v1.2.0", b.Dynamic)
	assert.True(t, b.Owns("clock-time-v1.2.0"))
	assert.False(t, b.Owns("clock-time-static-v1.1.0"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninstalled", cachectl.Uninstalled.String())
	assert.Equal(t, "installing", cachectl.Installing.String())
	assert.Equal(t, "waiting", cachectl.Waiting.String())
	assert.Equal(t, "active", cachectl.Active.String())
	assert.Equal(t, "state(9)", cachectl.State(9).String())

	raw, err := json.Marshal(map[string]cachectl.State{"state": cachectl.Waiting})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"waiting"}`, string(raw))
}

func TestInstallCachesManifestForOfflineUse(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")

	require.NoError(t, h.ctl.Install(ctx))
	assert.Equal(t, cachectl.Waiting, h.ctl.State())
	assert.Equal(t, len(cachectl.StaticManifest), h.origin.callCount())

	h.origin.setDown(true)
	static, err := h.store.Open(ctx, "clock-time-static-v1.2.0")
	require.NoError(t, err)
	for _, path := range cachectl.StaticManifest {
		snap, ok, err := static.Match(ctx, get(path).Key())
		require.NoError(t, err)
		require.True(t, ok, path)
		assert.Equal(t, http.StatusOK, snap.Status)
		assert.Equal(t, h.origin.pages[path], string(snap.Body))
		assert.Equal(t, arrival, snap.StoredAt)
	}
	assert.Equal(t, len(cachectl.StaticManifest), h.origin.callCount())

	ok, err := h.store.Has(ctx, "clock-time-dynamic-v1.2.0")
	require.NoError(t, err)
	assert.True(t, ok)
	dyn, err := h.store.Open(ctx, "clock-time-dynamic-v1.2.0")
	require.NoError(t, err)
	keys, err := dyn.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInstallIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name        string
		breakOrigin func(o *fakeOrigin)
	}{
		{"missing favicon", func(o *fakeOrigin) { o.remove("/favicon.ico") }},
		{"origin down", func(o *fakeOrigin) { o.setDown(true) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, "1.2.0")
			tt.breakOrigin(h.origin)

			err := h.ctl.Install(ctx)
			require.ErrorIs(t, err, cachectl.ErrInstallFailed)
			assert.Equal(t, cachectl.Uninstalled, h.ctl.State())

			names, err := h.store.Names(ctx)
			require.NoError(t, err)
			assert.Empty(t, names)

			// A later retry succeeds once the origin is healthy again.
			h.origin.setDown(false)
			h.origin.set("/favicon.ico", "ico")
			require.NoError(t, h.ctl.Install(ctx))
			assert.Equal(t, cachectl.Waiting, h.ctl.State())
		})
	}
}

func TestInstallTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	require.NoError(t, h.ctl.Install(ctx))
	calls := h.origin.callCount()
	require.NoError(t, h.ctl.Install(ctx))
	assert.Equal(t, calls, h.origin.callCount())
	assert.Equal(t, cachectl.Waiting, h.ctl.State())
}

func TestInstallRestoresPersistedBucketWhileOriginDown(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	origin := newOrigin()

	open := func() (*cachectl.Controller, *cachestore.SQLite, *prometheus.Registry) {
		store, err := cachestore.OpenSQLite(path)
		require.NoError(t, err)
		reg := prometheus.NewRegistry()
		ctl, err := cachectl.New(cachectl.Options{
			Version: "1.2.0",
			Storage: store,
			Network: origin,
			Logger:  zaptest.NewLogger(t),
			Metrics: cachectl.NewMetrics(reg),
			Now:     func() time.Time { return arrival },
		})
		require.NoError(t, err)
		return ctl, store, reg
	}

	first, store, _ := open()
	require.NoError(t, first.Install(ctx))
	require.NoError(t, first.Activate(ctx))
	require.NoError(t, store.Close())

	origin.setDown(true)
	calls := origin.callCount()
	second, store, reg := open()
	t.Cleanup(func() { store.Close() })

	require.NoError(t, second.Install(ctx))
	assert.Equal(t, cachectl.Waiting, second.State())
	assert.Equal(t, calls, origin.callCount())
	require.NoError(t, second.Activate(ctx))

	resp, err := second.Fetch(ctx, navigate("/"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromCache, resp.Source)
	assert.Equal(t, "<h1>Clock Time</h1>", string(resp.Body))

	want := `
# HELP clocktime_cache_lifecycle_total Install and activate events by outcome.
# TYPE clocktime_cache_lifecycle_total counter
clocktime_cache_lifecycle_total{event="activate",outcome="ok"} 1
clocktime_cache_lifecycle_total{event="install",outcome="restored"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "clocktime_cache_lifecycle_total"))
}

func TestInstallRefetchesIncompleteBucket(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	static, err := h.store.Open(ctx, "clock-time-static-v1.2.0")
	require.NoError(t, err)
	require.NoError(t, static.Put(ctx, get("/").Key(), cachestore.Snapshot{Status: http.StatusOK, Body: []byte("stale")}))

	require.NoError(t, h.ctl.Install(ctx))
	assert.Equal(t, len(cachectl.StaticManifest), h.origin.callCount())
	snap, ok, err := static.Match(ctx, get("/").Key())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<h1>Clock Time</h1>", string(snap.Body))
}

func TestActivateRequiresInstall(t *testing.T) {
	h := newHarness(t, "1.2.0")
	err := h.ctl.Activate(context.Background())
	require.ErrorIs(t, err, cachectl.ErrInvalidState)
	assert.Equal(t, cachectl.Uninstalled, h.ctl.State())
}

func TestActivateDeletesPreviousVersion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	for _, name := range []string{"clock-time-v1.1.0", "clock-time-static-v1.1.0", "clock-time-dynamic-v1.1.0"} {
		b, err := h.store.Open(ctx, name)
		require.NoError(t, err)
		require.NoError(t, b.Put(ctx, "GET /old", cachestore.Snapshot{Status: 200, Body: []byte("old")}))
	}

	h.activate(t)

	names, err := h.store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"clock-time-static-v1.2.0", "clock-time-dynamic-v1.2.0"}, names)

	_, ok, err := h.store.Match(ctx, "GET /old")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, c := range h.clients.list {
		assert.Equal(t, []cachectl.Outbound{cachectl.CacheUpdated{}}, c.received())
	}
}

func TestActivateWithoutStaleBucketsIsQuiet(t *testing.T) {
	h := newHarness(t, "1.2.0")
	h.activate(t)
	require.NoError(t, h.ctl.Activate(context.Background()))
	for _, c := range h.clients.list {
		assert.Empty(t, c.received())
	}
}

func TestVersionUpgrade(t *testing.T) {
	ctx := context.Background()
	old := newHarness(t, "1.1.0")
	old.activate(t)

	next, err := cachectl.New(cachectl.Options{
		Version: "1.2.0",
		Storage: old.store,
		Network: old.origin,
		Clients: old.clients,
	})
	require.NoError(t, err)
	require.NoError(t, next.Install(ctx))
	require.NoError(t, next.Activate(ctx))

	names, err := old.store.Names(ctx)
	require.NoError(t, err)
	for _, n := range names {
		assert.NotContains(t, n, "1.1.0")
	}
	assert.Len(t, names, 2)
}

func TestNavigationIsNetworkFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)

	resp, err := h.ctl.Fetch(ctx, navigate("/world"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromNetwork, resp.Source)
	assert.Equal(t, "<h1>World</h1>", string(resp.Body))

	dyn, err := h.store.Open(ctx, "clock-time-dynamic-v1.2.0")
	require.NoError(t, err)
	_, ok, err := dyn.Match(ctx, "GET /world")
	require.NoError(t, err)
	assert.True(t, ok)

	h.origin.set("/world", "<h1>World v2</h1>")
	resp, err = h.ctl.Fetch(ctx, navigate("/world"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromNetwork, resp.Source)
	assert.Equal(t, "<h1>World v2</h1>", string(resp.Body))

	h.origin.setDown(true)
	resp, err = h.ctl.Fetch(ctx, navigate("/world"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromCache, resp.Source)
	assert.Equal(t, "<h1>World v2</h1>", string(resp.Body))
}

func TestNavigationDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)

	resp, err := h.ctl.Fetch(ctx, navigate("/missing"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)

	_, ok, err := h.store.Match(ctx, "GET /missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNavigationFailureFallsBackToOfflineDocument(t *testing.T) {
	h := newHarness(t, "1.2.0")
	h.activate(t)
	h.origin.setDown(true)

	resp, err := h.ctl.Fetch(context.Background(), navigate("/clock/tokyo"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromOffline, resp.Source)
	assert.Equal(t, "<h1>You are offline</h1>", string(resp.Body))
}

func TestNavigationWithoutOfflineDocument(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)
	_, err := h.store.Delete(ctx, "clock-time-static-v1.2.0")
	require.NoError(t, err)
	h.origin.setDown(true)

	_, err = h.ctl.Fetch(ctx, navigate("/clock/tokyo"))
	require.ErrorIs(t, err, cachectl.ErrOffline)
	assert.ErrorIs(t, err, errRefused)
}

func TestAssetsAreCacheFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)

	resp, err := h.ctl.Fetch(ctx, get("/app.js"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromNetwork, resp.Source)
	calls := h.origin.callCount()

	h.origin.set("/app.js", "changed")
	resp, err = h.ctl.Fetch(ctx, get("/app.js"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromCache, resp.Source)
	assert.Equal(t, "console.log('tick')", string(resp.Body))
	assert.Equal(t, calls, h.origin.callCount())

	dyn, err := h.store.Open(ctx, "clock-time-dynamic-v1.2.0")
	require.NoError(t, err)
	keys, err := dyn.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /app.js"}, keys)
}

func TestManifestPathsGoToStaticBucket(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)

	_, err := h.ctl.Fetch(ctx, get("/manifest.json?v=2"))
	require.NoError(t, err)

	static, err := h.store.Open(ctx, "clock-time-static-v1.2.0")
	require.NoError(t, err)
	_, ok, err := static.Match(ctx, "GET /manifest.json?v=2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssetNetworkFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)
	h.origin.setDown(true)

	_, err := h.ctl.Fetch(ctx, get("/app.js"))
	require.ErrorIs(t, err, cachectl.ErrNetwork)

	req := get("/report")
	req.Destination = cachectl.DestinationDocument
	resp, err := h.ctl.Fetch(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromOffline, resp.Source)
}

func TestNonGetPassesThrough(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)

	req := cachectl.Request{Method: http.MethodPost, Path: "/app.js", Body: []byte("x")}
	resp, err := h.ctl.Fetch(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromNetwork, resp.Source)

	_, ok, err := h.store.Match(ctx, "POST /app.js")
	require.NoError(t, err)
	assert.False(t, ok)

	h.origin.setDown(true)
	_, err = h.ctl.Fetch(ctx, req)
	require.ErrorIs(t, err, cachectl.ErrNetwork)
}

func TestFetchBeforeActivationPassesThrough(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	require.NoError(t, h.ctl.Install(ctx))
	calls := h.origin.callCount()

	resp, err := h.ctl.Fetch(ctx, get("/"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromNetwork, resp.Source)
	assert.Equal(t, calls+1, h.origin.callCount())

	h.origin.setDown(true)
	_, err = h.ctl.Fetch(ctx, navigate("/"))
	require.ErrorIs(t, err, cachectl.ErrNetwork)
}

func TestStorageFailureDegradesToNetwork(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)
	h.store.failMatch = true

	resp, err := h.ctl.Fetch(ctx, get("/app.js"))
	require.NoError(t, err)
	assert.Equal(t, cachectl.FromNetwork, resp.Source)

	h.origin.setDown(true)
	_, err = h.ctl.Fetch(ctx, navigate("/world"))
	require.ErrorIs(t, err, cachectl.ErrOffline)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.clients.list = append(h.clients.list, &fakeClient{id: "gone", fail: true})

	assert.Equal(t, 2, h.ctl.Sync(ctx, cachectl.SyncTag))
	for _, c := range h.clients.list[:2] {
		assert.Equal(t, []cachectl.Outbound{cachectl.SyncSuccess{}}, c.received())
	}

	assert.Equal(t, 0, h.ctl.Sync(ctx, "sync-something-else"))
	assert.Len(t, h.clients.list[0].received(), 1)
}

func TestPush(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")

	n, err := h.ctl.Push(ctx, []byte("Wake up: 07:00 Tokyo"))
	require.NoError(t, err)
	assert.Equal(t, "Clock Time", n.Title)
	assert.Equal(t, "Wake up: 07:00 Tokyo", n.Body)
	assert.Equal(t, "/icons/icon-192x192.png", n.Icon)
	assert.Equal(t, "/icons/icon-72x72.png", n.Badge)
	assert.Equal(t, []int{200, 100, 200}, n.Vibrate)
	assert.Equal(t, arrival.UnixMilli(), n.Data.DateOfArrival)
	assert.Equal(t, 1, n.Data.PrimaryKey)
	require.Len(t, n.Actions, 2)
	assert.Equal(t, "explore", n.Actions[0].Action)
	assert.Equal(t, "View Clock", n.Actions[0].Title)
	assert.Equal(t, "close", n.Actions[1].Action)
	assert.Equal(t, "Dismiss", n.Actions[1].Title)
	assert.NotEmpty(t, n.ID)

	n, err = h.ctl.Push(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Clock Time notification", n.Body)
	assert.Len(t, h.notifier.shown, 2)
}

func TestNotificationClick(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")

	require.NoError(t, h.ctl.NotificationClick(ctx, "n1", cachectl.ActionClose))
	assert.Equal(t, []string{"n1"}, h.notifier.closed)
	assert.Empty(t, h.clients.opened)

	require.NoError(t, h.ctl.NotificationClick(ctx, "n2", cachectl.ActionExplore))
	assert.Equal(t, []string{"n1", "n2"}, h.notifier.closed)
	assert.Equal(t, []string{"/"}, h.clients.opened)
}

func TestNotificationClickWithoutClients(t *testing.T) {
	ctl, err := cachectl.New(cachectl.Options{Storage: cachestore.NewMemory(), Network: newOrigin()})
	require.NoError(t, err)
	err = ctl.NotificationClick(context.Background(), "n1", cachectl.ActionExplore)
	assert.ErrorIs(t, err, cachectl.ErrNoClients)
}

func TestMessageSkipWaiting(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")

	// Nothing waiting yet.
	require.NoError(t, h.ctl.Message(ctx, []byte(`{"type":"SKIP_WAITING"}`)))
	assert.Equal(t, cachectl.Uninstalled, h.ctl.State())

	require.NoError(t, h.ctl.Install(ctx))
	require.NoError(t, h.ctl.Message(ctx, []byte(`{"type":"SKIP_WAITING"}`)))
	assert.Equal(t, cachectl.Active, h.ctl.State())
}

func TestMessageSyncData(t *testing.T) {
	h := newHarness(t, "1.2.0")
	err := h.ctl.Message(context.Background(), []byte(`{"type":"SYNC_DATA","key":"alarms","data":[{"id":"1"}]}`))
	require.NoError(t, err)
	for _, c := range h.clients.list {
		assert.Equal(t, []cachectl.Outbound{cachectl.SyncSuccess{Key: "alarms"}}, c.received())
	}
}

func TestMessageRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `SKIP_WAITING`},
		{"no type", `{}`},
		{"unknown type", `{"type":"RELOAD"}`},
		{"sync without key", `{"type":"SYNC_DATA","data":1}`},
		{"sync blank key", `{"type":"SYNC_DATA","key":"  "}`},
	}
	h := newHarness(t, "1.2.0")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.ctl.Message(context.Background(), []byte(tt.raw))
			assert.ErrorIs(t, err, cachectl.ErrInvalidMessage)
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	msg, err := cachectl.DecodeMessage([]byte(`{"type":"SYNC_DATA","key":"theme","data":"dark"}`))
	require.NoError(t, err)
	sd, ok := msg.(cachectl.SyncData)
	require.True(t, ok)
	assert.Equal(t, "theme", sd.Key)
	assert.JSONEq(t, `"dark"`, string(sd.Data))

	msg, err = cachectl.DecodeMessage([]byte(`{"type":"SKIP_WAITING"}`))
	require.NoError(t, err)
	assert.Equal(t, cachectl.SkipWaiting{}, msg)
}

func TestOutboundEncoding(t *testing.T) {
	tests := []struct {
		msg  cachectl.Outbound
		want string
	}{
		{cachectl.SyncSuccess{Key: "alarms"}, `{"type":"SYNC_SUCCESS","key":"alarms"}`},
		{cachectl.SyncSuccess{}, `{"type":"SYNC_SUCCESS"}`},
		{cachectl.CacheUpdated{}, `{"type":"CACHE_UPDATED"}`},
		{cachectl.OpenWindow{URL: "/"}, `{"type":"OPEN_WINDOW","url":"/"}`},
	}
	for _, tt := range tests {
		raw, err := json.Marshal(tt.msg)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(raw))
	}
}

func TestLifecycleMetrics(t *testing.T) {
	h := newHarness(t, "1.2.0")
	h.origin.setDown(true)
	require.Error(t, h.ctl.Install(context.Background()))
	h.origin.setDown(false)
	h.activate(t)

	want := `
# HELP clocktime_cache_lifecycle_total Install and activate events by outcome.
# TYPE clocktime_cache_lifecycle_total counter
clocktime_cache_lifecycle_total{event="activate",outcome="ok"} 1
clocktime_cache_lifecycle_total{event="install",outcome="failed"} 1
clocktime_cache_lifecycle_total{event="install",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(want), "clocktime_cache_lifecycle_total"))
}

func TestFetchMetrics(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "1.2.0")
	h.activate(t)

	_, _ = h.ctl.Fetch(ctx, get("/app.js"))
	_, _ = h.ctl.Fetch(ctx, get("/app.js"))
	h.origin.setDown(true)
	_, _ = h.ctl.Fetch(ctx, navigate("/nowhere"))

	want := `
# HELP clocktime_cache_fetch_total Intercepted requests by how they were answered.
# TYPE clocktime_cache_fetch_total counter
clocktime_cache_fetch_total{mode="cache_first",source="cache"} 1
clocktime_cache_fetch_total{mode="cache_first",source="network"} 1
clocktime_cache_fetch_total{mode="navigate",source="offline"} 1
`
	require.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(want), "clocktime_cache_fetch_total"))
}
