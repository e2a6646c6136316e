package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/clocktime/internal/config"
	"github.com/Tiliavir/clocktime/internal/logging"
	"github.com/Tiliavir/clocktime/internal/storage"
)

// version is set at build time with -ldflags "-X ...cmd.version=...".
var version = "dev"

var (
	cfg     config.Config
	logger  = zap.NewNop()
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "clocktime",
	Short: "Clock Time – a world clock with an offline cache proxy",
	Long: `clocktime detects your timezone, shows clocks around the world and keeps
alarms, saved locations and the theme as JSON files in ~/.clocktime/.

"clocktime serve" runs the web app; "clocktime proxy" puts the offline
cache controller in front of it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(clockCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(alarmCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(proxyCmd)
}

// setup loads the config file, builds the logger and resolves the data dir.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		fatal(err)
	}
	cfg = c

	l, err := logging.New(logging.Config{
		ServiceName: "clocktime",
		Environment: cfg.Log.Environment,
		Version:     version,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}
	logger = l.With(zap.String("command", cmd.Name()))

	dataDir = cfg.Clock.DataDir
	if dataDir == "" {
		if dataDir, err = storage.BaseDir(); err != nil {
			fatal(err)
		}
	}
	return nil
}

// fatal reports a storage or runtime failure and exits with status 2.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

// usageError reports invalid input and exits with status 1.
func usageError(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
