package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/cachectl"
	"github.com/Tiliavir/clocktime/internal/cachestore"
	"github.com/Tiliavir/clocktime/internal/config"
	"github.com/Tiliavir/clocktime/internal/server"
	"github.com/Tiliavir/clocktime/internal/upstream"
)

var (
	proxyAddr     string
	proxyUpstream string
	proxyBackend  string
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the offline cache controller in front of the web app",
	Long: `Run the offline cache controller in front of an origin (by default the
web app started with "clocktime serve"). Pages keep loading from the cache
when the origin is down; /_sw/ exposes the controller's events and state.`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

func init() {
	proxyCmd.Flags().StringVar(&proxyAddr, "addr", "", "Listen address (default from proxy.addr)")
	proxyCmd.Flags().StringVar(&proxyUpstream, "upstream", "", "Origin URL (default from proxy.upstream)")
	proxyCmd.Flags().StringVar(&proxyBackend, "backend", "", "Cache backend: memory, sqlite or redis (default from proxy.backend)")
}

func runProxy(cmd *cobra.Command, args []string) error {
	pc := cfg.Proxy
	if proxyAddr != "" {
		pc.Addr = proxyAddr
	}
	if proxyUpstream != "" {
		pc.Upstream = proxyUpstream
	}
	if proxyBackend != "" {
		pc.Backend = proxyBackend
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openCacheStore(ctx, pc, dataDir)
	if err != nil {
		fatal(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing cache store", zap.Error(err))
		}
	}()

	upCfg := upstream.Config{BaseURL: pc.Upstream, Timeout: pc.Timeout, MaxBody: pc.MaxBody}
	if pc.OAuth2.Enabled() {
		upCfg.OAuth2 = &upstream.OAuth2{
			ClientID:     pc.OAuth2.ClientID,
			ClientSecret: pc.OAuth2.ClientSecret,
			TokenURL:     pc.OAuth2.TokenURL,
			Scopes:       pc.OAuth2.Scopes,
		}
	}
	network, err := upstream.New(ctx, upCfg)
	if err != nil {
		usageError("invalid upstream: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := server.NewHub(logger)
	ctl, err := cachectl.New(cachectl.Options{
		Version:  pc.CacheVersion,
		Storage:  store,
		Network:  network,
		Clients:  hub,
		Notifier: hub,
		Logger:   logger,
		Metrics:  cachectl.NewMetrics(reg),
	})
	if err != nil {
		return err
	}

	gw := server.NewGateway(ctl, hub, reg, logger)
	engine := server.NewEngine(logger)
	gw.Register(engine)

	go func() {
		if err := gw.Bootstrap(ctx, pc.InstallRetry); err != nil && ctx.Err() == nil {
			logger.Error("cache bootstrap failed", zap.Error(err))
		}
	}()

	logger.Info("proxying",
		zap.String("addr", pc.Addr),
		zap.String("upstream", pc.Upstream),
		zap.String("backend", pc.Backend),
		zap.String("cache_version", ctl.Version()),
	)
	if err := server.Run(ctx, pc.Addr, engine, cfg.Server.ShutdownTimeout, logger, hub.Shutdown); err != nil {
		fatal(fmt.Errorf("proxy: %w", err))
	}
	return nil
}

// openCacheStore builds the configured cache backend.
func openCacheStore(ctx context.Context, pc config.ProxyConfig, dataDir string) (cachestore.Storage, error) {
	switch strings.ToLower(strings.TrimSpace(pc.Backend)) {
	case config.BackendMemory, "":
		return cachestore.NewMemory(), nil
	case config.BackendSQLite:
		path := pc.SQLitePath
		if path == "" {
			path = filepath.Join(dataDir, "cache.db")
		}
		s, err := cachestore.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache %s: %w", path, err)
		}
		return s, nil
	case config.BackendRedis:
		r, err := cachestore.DialRedis(ctx, pc.RedisAddr, pc.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis cache %s: %w", pc.RedisAddr, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", pc.Backend)
	}
}
