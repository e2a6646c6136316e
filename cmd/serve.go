package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/alarm"
	"github.com/Tiliavir/clocktime/internal/config"
	"github.com/Tiliavir/clocktime/internal/locations"
	"github.com/Tiliavir/clocktime/internal/server"
	"github.com/Tiliavir/clocktime/internal/weather"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the world clock web app",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	theme := openTheme()
	site := server.NewSite(server.SiteOptions{
		Alarms:    alarm.NewManager(dataDir, logger),
		Locations: locations.NewManager(dataDir, logger),
		Weather:   weather.NewSimulated(uint64(time.Now().UnixNano()), cfg.Server.WeatherDelay),
		Detect:    timezoneSource(""),
		Theme:     theme.Get,
		Use24h:    cfg.Clock.Use24h,
		Logger:    logger,
	})
	engine := server.NewEngine(logger)
	site.Register(engine)

	if dir, err := config.Dir(); err == nil {
		err = config.Watch(dir, logger, func(c config.Config) { site.SetUse24h(c.Clock.Use24h) })
		if err != nil {
			logger.Warn("config changes will need a restart", zap.Error(err))
		}
	}

	logger.Info("serving clock", zap.String("addr", addr), zap.String("data_dir", dataDir))
	if err := server.Run(ctx, addr, engine, cfg.Server.ShutdownTimeout, logger); err != nil {
		fatal(fmt.Errorf("server: %w", err))
	}
	return nil
}
