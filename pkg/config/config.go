package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/srg/blekbd/internal/hid"
)

// Config holds application configuration
type Config struct {
	LogLevel        string        `yaml:"log_level" default:"info"`
	Adapter         string        `yaml:"adapter"`
	LocalName       string        `yaml:"local_name" default:"MyBLEKeyboard"`
	Appearance      uint16        `yaml:"appearance" default:"961"`
	IncludeTxPower  bool          `yaml:"include_tx_power" default:"true"`
	Period          time.Duration `yaml:"period" default:"5s"`
	ReleaseDelay    time.Duration `yaml:"release_delay" default:"500ms"`
	Key             string        `yaml:"key" default:"a"`
	Text            string        `yaml:"text"`
	ControlPoint    bool          `yaml:"control_point" default:"false"`
	AppRoot         string        `yaml:"app_root" default:"/"`
	PathPrefix      string        `yaml:"path_prefix" default:"/org/bluez/example"`
	TapSize         int           `yaml:"tap_size" default:"64"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"5s"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
// The result is not validated; callers apply their overrides first and then
// call Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %s", c.Period)
	}
	if c.ReleaseDelay <= 0 || c.ReleaseDelay >= c.Period {
		return fmt.Errorf("release delay %s must be positive and shorter than the period %s", c.ReleaseDelay, c.Period)
	}
	if c.Text == "" {
		if _, err := hid.ParseKey(c.Key); err != nil {
			return err
		}
	}
	for _, p := range []string{c.AppRoot, c.PathPrefix} {
		if !dbus.ObjectPath(p).IsValid() {
			return fmt.Errorf("invalid object path %q", p)
		}
	}
	if c.TapSize <= 0 {
		return fmt.Errorf("tap size must be positive, got %d", c.TapSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
