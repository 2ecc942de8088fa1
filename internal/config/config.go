package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rathe12/SystemMonitor/internal/logging"
	"github.com/rathe12/SystemMonitor/internal/logstore"
	"github.com/rathe12/SystemMonitor/internal/threshold"
)

const (
	Version         = "1.0.0"
	DefaultInterval = 2 // seconds
	DefaultDiskPath = "/"
	EnvPrefix       = "SYSMON"
)

type Config struct {
	Interval  int             `mapstructure:"interval"   validate:"gte=0"`
	NoNetwork bool            `mapstructure:"no_network"`
	Once      bool            `mapstructure:"once"`
	DiskPath  string          `mapstructure:"disk_path"  validate:"required"`
	NoColor   bool            `mapstructure:"no_color"`
	History   HistoryConfig   `mapstructure:"history"`
	Threshold ThresholdConfig `mapstructure:"threshold"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// HistoryConfig controls the daily sample log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

type ThresholdConfig struct {
	// Limit is nil when no threshold was configured.
	Limit        *int `mapstructure:"-"              validate:"omitempty,gte=0,lte=100"`
	StopOnBreach bool `mapstructure:"stop_on_breach"`
}

// LoggingConfig controls operational logs, not the sample history.
type LoggingConfig struct {
	Level      string `mapstructure:"level"       validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format"      validate:"oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"    validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int    `mapstructure:"max_age"     validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"interval":          "interval",
	"no-network":        "no_network",
	"once":              "once",
	"disk-path":         "disk_path",
	"no-color":          "no_color",
	"log":               "history.enabled",
	"log-dir":           "history.dir",
	"threshold":         "threshold.limit",
	"stop-on-threshold": "threshold.stop_on_breach",
	"log-level":         "logging.level",
	"log-format":        "logging.format",
	"log-file":          "logging.file",
}

// RegisterFlags adds the monitor flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Int("interval", DefaultInterval, "Seconds to wait between samples")
	flags.Bool("no-network", false, "Disable network speed monitoring")
	flags.Bool("once", false, "Take a single sample and exit")
	flags.String("disk-path", DefaultDiskPath, "Mount point to report disk usage for")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("log", false, "Save every sample to a daily JSON log")
	flags.String("log-dir", logstore.DefaultDir, "Directory for daily JSON logs")
	flags.Int("threshold", 0, "Warn when CPU or memory usage exceeds this percentage")
	flags.Bool("stop-on-threshold", false, "Exit instead of warning when the threshold is exceeded")
	flags.String("log-level", "warn", "Operational log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Operational log format (text, json)")
	flags.String("log-file", "", "Write operational logs to a rotated file instead of stderr")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("no_network", false)
	v.SetDefault("once", false)
	v.SetDefault("disk_path", DefaultDiskPath)
	v.SetDefault("no_color", false)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.dir", logstore.DefaultDir)
	v.SetDefault("threshold.stop_on_breach", false)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", false)
}

// Load merges defaults, an optional config file, SYSMON_* environment
// variables and changed flags, in increasing priority. An empty path searches
// the working directory and ~/.config/sysmon for a file named sysmon.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sysmon")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sysmon")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Flag defaults do not count as set, so an untouched --threshold stays nil.
	if v.IsSet("threshold.limit") {
		limit := v.GetInt("threshold.limit")
		cfg.Threshold.Limit = &limit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

func (c *Config) Policy() threshold.Policy {
	policy := threshold.Policy{StopOnBreach: c.Threshold.StopOnBreach}
	if c.Threshold.Limit != nil {
		limit := uint(*c.Threshold.Limit)
		policy.Limit = &limit
	}
	return policy
}

func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Compress:   c.Logging.Compress,
	}
}
