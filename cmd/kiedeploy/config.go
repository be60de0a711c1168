package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all CLI configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Kube       KubeConfig       `mapstructure:"kube"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
	Properties PropertiesConfig `mapstructure:"properties"`
	History    HistoryConfig    `mapstructure:"history"`
	Readiness  ReadinessConfig  `mapstructure:"readiness"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// KubeConfig selects the cluster.
type KubeConfig struct {
	// Kubeconfig is an explicit kubeconfig path. Empty means in-cluster,
	// then KUBECONFIG, then ~/.kube/config.
	Kubeconfig string `mapstructure:"kubeconfig"`

	// Namespace is used when -namespace is not given. Empty means a
	// generated namespace per run.
	Namespace string `mapstructure:"namespace"`
}

// TemplatesConfig holds template lookup configuration.
type TemplatesConfig struct {
	// Dir is searched before the built-in templates.
	Dir string `mapstructure:"dir"`
}

// PropertiesConfig points at the builder property override file.
type PropertiesConfig struct {
	File string `mapstructure:"file"`
}

// HistoryConfig holds submission history configuration.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ReadinessConfig holds route endpoint polling configuration.
type ReadinessConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// Insecure skips certificate verification on https routes.
	Insecure bool `mapstructure:"insecure"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("kube.kubeconfig", "")
	v.SetDefault("kube.namespace", "")
	v.SetDefault("templates.dir", "")
	v.SetDefault("properties.file", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.dsn", "data/kiedeploy.db")
	v.SetDefault("readiness.interval", "1s")
	v.SetDefault("readiness.timeout", "30s")
	v.SetDefault("readiness.insecure", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	v.SetEnvPrefix("KIEDEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// Logs go to w, which is stderr in normal runs so rendered output on stdout
// stays clean.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
