package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the root configuration, stored in ~/.clocktime/config.yaml.
// Every key can be overridden with a CLOCKTIME_ environment variable, e.g.
// CLOCKTIME_PROXY_UPSTREAM for proxy.upstream.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Clock  ClockConfig  `mapstructure:"clock"`
	Server ServerConfig `mapstructure:"server"`
	Proxy  ProxyConfig  `mapstructure:"proxy"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Environment string `mapstructure:"environment"`
}

// ClockConfig holds display settings shared by the CLI and the terminal clock.
type ClockConfig struct {
	// Use24h selects "15:04:05" over "03:04:05 PM".
	Use24h bool `mapstructure:"use_24h"`
	// Timezone overrides host detection. Empty = detect.
	Timezone string `mapstructure:"timezone"`
	// DataDir holds saved locations, alarms and the theme. Empty = ~/.clocktime.
	DataDir string `mapstructure:"data_dir"`
}

// ServerConfig configures `clocktime serve`.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	WeatherDelay    time.Duration `mapstructure:"weather_delay"`
}

// ProxyConfig configures `clocktime proxy`.
type ProxyConfig struct {
	Addr         string        `mapstructure:"addr"`
	Upstream     string        `mapstructure:"upstream"`
	CacheVersion string        `mapstructure:"cache_version"`
	Backend      string        `mapstructure:"backend"`
	SQLitePath   string        `mapstructure:"sqlite_path"`
	RedisAddr    string        `mapstructure:"redis_addr"`
	RedisPrefix  string        `mapstructure:"redis_prefix"`
	InstallRetry time.Duration `mapstructure:"install_retry"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBody      int64         `mapstructure:"max_body"`
	OAuth2       OAuth2Config  `mapstructure:"oauth2"`
}

// OAuth2Config enables client credentials authentication towards the
// upstream when ClientID is set.
type OAuth2Config struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// Enabled reports whether upstream requests should carry a token.
func (o OAuth2Config) Enabled() bool {
	return strings.TrimSpace(o.ClientID) != ""
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "CLOCKTIME"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.environment", "local")

	v.SetDefault("clock.use_24h", false)
	v.SetDefault("clock.timezone", "")
	v.SetDefault("clock.data_dir", "")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.weather_delay", time.Second)

	v.SetDefault("proxy.addr", ":8080")
	v.SetDefault("proxy.upstream", "http://localhost:3000")
	v.SetDefault("proxy.cache_version", "1.2.0")
	v.SetDefault("proxy.backend", BackendMemory)
	v.SetDefault("proxy.sqlite_path", "")
	v.SetDefault("proxy.redis_addr", "localhost:6379")
	v.SetDefault("proxy.redis_prefix", "clocktime:")
	v.SetDefault("proxy.install_retry", 30*time.Second)
	v.SetDefault("proxy.timeout", 15*time.Second)
	v.SetDefault("proxy.max_body", 10<<20)
	v.SetDefault("proxy.oauth2.client_id", "")
	v.SetDefault("proxy.oauth2.client_secret", "")
	v.SetDefault("proxy.oauth2.token_url", "")
	v.SetDefault("proxy.oauth2.scopes", []string{})
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# clocktime configuration - ~/.clocktime/config.yaml
#
# All settings are optional; the defaults below work out of the box.
# Any key can be overridden from the environment or a .env file, e.g.
#   CLOCKTIME_LOG_LEVEL=debug
#   CLOCKTIME_PROXY_UPSTREAM=https://clock.example.com

log:
  # debug, info, warn or error.
  level: info
  # console (human readable) or json.
  format: console
  environment: local

clock:
  # Show 24-hour times instead of AM/PM.
  use_24h: false
  # IANA timezone used instead of the detected host zone, e.g. "Europe/Berlin".
  # Can be overridden per command with: clocktime detect --tz <zone>
  timezone: ""
  # Where saved locations, alarms and the theme live. Empty = ~/.clocktime
  data_dir: ""

server:
  # Listen address for: clocktime serve
  addr: ":3000"
  shutdown_timeout: 10s
  # Simulated latency of the weather endpoint.
  weather_delay: 1s

proxy:
  # Listen address for: clocktime proxy
  addr: ":8080"
  # Origin the offline cache sits in front of.
  upstream: "http://localhost:3000"
  # Changing the version drops every cache bucket of other versions on activation.
  cache_version: "1.2.0"
  # memory, sqlite or redis.
  backend: memory
  # Used by the sqlite backend. Empty = ~/.clocktime/cache.db
  sqlite_path: ""
  # Used by the redis backend.
  redis_addr: "localhost:6379"
  redis_prefix: "clocktime:"
  # Delay between failed install attempts.
  install_retry: 30s
  timeout: 15s
  # Largest upstream response (bytes) the proxy will buffer.
  max_body: 10485760
  # Client credentials for an authenticated upstream. Leave client_id empty to disable.
  oauth2:
    client_id: ""
    client_secret: ""
    token_url: ""
    scopes: []
`

// Dir returns ~/.clocktime.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".clocktime"), nil
}

// Load reads ~/.clocktime/config.yaml, creating it with annotated defaults
// on first run. A .env file in the working directory is loaded first.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return defaultConfig(), err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(dir string) (Config, error) {
	_ = godotenv.Load()

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	}

	v := newViper()
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaultConfig(), fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return defaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Watch reloads the config file in dir whenever it changes and passes every
// valid result to onChange. Invalid edits are logged and ignored, so the
// last good config stays in effect.
func Watch(dir string, log *zap.Logger, onChange func(Config)) error {
	if log == nil {
		log = zap.NewNop()
	}
	v := newViper()
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watching config in %s: %w", dir, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			log.Warn("config reload failed", zap.String("file", e.Name), zap.Error(err))
			return
		}
		if err := cfg.validate(); err != nil {
			log.Warn("invalid config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		log.Info("config reloaded", zap.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// defaultConfig returns a Config pre-filled with the built-in defaults.
func defaultConfig() Config {
	var cfg Config
	_ = newViper().Unmarshal(&cfg)
	return cfg
}

func (c Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Proxy.Backend)) {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("proxy.backend must be memory, sqlite or redis, got %q", c.Proxy.Backend)
	}
	if c.Clock.Timezone != "" {
		if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
			return fmt.Errorf("clock.timezone: %w", err)
		}
	}
	if c.Proxy.InstallRetry <= 0 {
		return fmt.Errorf("proxy.install_retry must be positive")
	}
	if c.Proxy.OAuth2.Enabled() && strings.TrimSpace(c.Proxy.OAuth2.TokenURL) == "" {
		return fmt.Errorf("proxy.oauth2.token_url is required when client_id is set")
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
