// Package config loads node configuration from <home>/config/app.toml,
// TOURNAMENTD_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "TOURNAMENTD"

// Flag and config keys.
const (
	FlagHome        = "home"
	FlagABCIAddr    = "abci-addr"
	FlagTransport   = "transport"
	FlagMetricsAddr = "metrics-addr"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
	FlagKeepRecent  = "keep-recent"
)

const (
	DefaultHome        = ".tournamentd"
	DefaultABCIAddr    = "tcp://127.0.0.1:26658"
	DefaultTransport   = "socket"
	DefaultMetricsAddr = ":26660"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "plain"
	DefaultKeepRecent  = 100
)

type Config struct {
	Home        string `mapstructure:"home"`
	ABCIAddr    string `mapstructure:"abci-addr"`
	Transport   string `mapstructure:"transport"`
	MetricsAddr string `mapstructure:"metrics-addr"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	KeepRecent  int64  `mapstructure:"keep-recent"`
}

func Default() Config {
	return Config{
		Home:        DefaultHome,
		ABCIAddr:    DefaultABCIAddr,
		Transport:   DefaultTransport,
		MetricsAddr: DefaultMetricsAddr,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		KeepRecent:  DefaultKeepRecent,
	}
}

// AddFlags registers the node flags on fs with their defaults.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagHome, d.Home, "node home directory (config under <home>/config, data under <home>/data)")
	fs.String(FlagABCIAddr, d.ABCIAddr, "ABCI listen address")
	fs.String(FlagTransport, d.Transport, "ABCI transport (socket|grpc)")
	fs.String(FlagMetricsAddr, d.MetricsAddr, "prometheus listen address (empty disables)")
	fs.String(FlagLogLevel, d.LogLevel, "log level (trace|debug|info|warn|error)")
	fs.String(FlagLogFormat, d.LogFormat, "log format (plain|json)")
	fs.Int64(FlagKeepRecent, d.KeepRecent, "number of height-indexed snapshots to retain")
}

// Load resolves the configuration. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	d := Default()
	v.SetDefault(FlagHome, d.Home)
	v.SetDefault(FlagABCIAddr, d.ABCIAddr)
	v.SetDefault(FlagTransport, d.Transport)
	v.SetDefault(FlagMetricsAddr, d.MetricsAddr)
	v.SetDefault(FlagLogLevel, d.LogLevel)
	v.SetDefault(FlagLogFormat, d.LogFormat)
	v.SetDefault(FlagKeepRecent, d.KeepRecent)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	home := v.GetString(FlagHome)
	cfgFile := filepath.Join(home, "config", "app.toml")
	if _, err := os.Stat(cfgFile); err == nil {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("invalid transport %q (want socket|grpc)", c.Transport)
	}
	switch c.LogFormat {
	case "plain", "json":
	default:
		return fmt.Errorf("invalid log format %q (want plain|json)", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Home == "" {
		return fmt.Errorf("home must not be empty")
	}
	return nil
}

// NewLogger builds the node logger described by c.
func (c Config) NewLogger(w io.Writer) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if c.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...), nil
}
