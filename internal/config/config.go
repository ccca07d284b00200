package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/vrnd369/compressing/internal/domain"
)

type Config struct {
	Preset      string          `mapstructure:"preset"`
	Workers     int             `mapstructure:"workers"`
	ArchiveName string          `mapstructure:"archive_name"`
	History     HistoryConfig   `mapstructure:"history"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type TelemetryConfig struct {
	Exporter     string `mapstructure:"exporter"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// Load reads defaults, then an optional compressing.yaml (working directory
// or ~/.config/compressing), then COMPRESSING_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("preset", "medium")
	v.SetDefault("workers", 0)
	v.SetDefault("archive_name", "compressed-images.zip")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(".compressing", "history.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
	v.SetDefault("telemetry.exporter", "none")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)

	v.SetConfigName("compressing")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "compressing"))
	}

	v.SetEnvPrefix("COMPRESSING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := domain.Preset(c.Preset); !ok {
		return fmt.Errorf("unknown preset %q (have %s)", c.Preset, strings.Join(domain.PresetNames(), ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch strings.ToLower(c.Telemetry.Exporter) {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unsupported telemetry exporter %q", c.Telemetry.Exporter)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported logging level %q", c.Logging.Level)
	}
	return nil
}
