// Package config loads nostrpow settings from defaults, a YAML file and
// NOSTRPOW_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/roach88/nostrpow/internal/pow"
)

// Environment variable names.
const (
	EnvDifficulty        = "NOSTRPOW_DIFFICULTY"
	EnvWorkers           = "NOSTRPOW_WORKERS"
	EnvLogLevel          = "NOSTRPOW_LOG_LEVEL"
	EnvLogFormat         = "NOSTRPOW_LOG_FORMAT"
	EnvTimeout           = "NOSTRPOW_TIMEOUT"
	EnvMaxMarkerAttempts = "NOSTRPOW_MAX_MARKER_ATTEMPTS"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultDifficulty is the target used when nothing else is configured.
const DefaultDifficulty pow.Difficulty = 16

// Config holds resolved settings.
type Config struct {
	// Difficulty is the required number of leading zero bits.
	Difficulty pow.Difficulty

	// Workers is the number of miner goroutines; 0 means one per CPU.
	Workers int

	// LogLevel is any level accepted by logrus.ParseLevel.
	LogLevel string

	// LogFormat is FormatText or FormatJSON.
	LogFormat string

	// Timeout bounds a single search; 0 means no limit.
	Timeout time.Duration

	// MaxMarkerAttempts bounds the placeholder marker search.
	MaxMarkerAttempts int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Difficulty:        DefaultDifficulty,
		Workers:           0,
		LogLevel:          "info",
		LogFormat:         FormatText,
		Timeout:           0,
		MaxMarkerAttempts: pow.DefaultMaxMarkerAttempts,
	}
}

// fileConfig is the YAML shape. Pointers distinguish unset from zero.
type fileConfig struct {
	Difficulty        any     `yaml:"difficulty"`
	Workers           *int    `yaml:"workers"`
	LogLevel          *string `yaml:"log_level"`
	LogFormat         *string `yaml:"log_format"`
	Timeout           *string `yaml:"timeout"`
	MaxMarkerAttempts *int    `yaml:"max_marker_attempts"`
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	return errors.Wrapf(c.Decode(data), "load config %s", path)
}

// Decode overlays YAML data onto c. Unknown keys are rejected.
func (c *Config) Decode(data []byte) error {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return errors.Wrap(err, "decode yaml")
	}

	if fc.Difficulty != nil {
		d, err := pow.ParseDifficulty(fc.Difficulty)
		if err != nil {
			return errors.Wrap(err, "difficulty")
		}
		c.Difficulty = d
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		c.LogFormat = *fc.LogFormat
	}
	if fc.Timeout != nil {
		t, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return errors.Wrap(err, "timeout")
		}
		c.Timeout = t
	}
	if fc.MaxMarkerAttempts != nil {
		c.MaxMarkerAttempts = *fc.MaxMarkerAttempts
	}
	return nil
}

// ApplyEnv overlays NOSTRPOW_* variables found by lookup onto c.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDifficulty); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvDifficulty)
		}
		d, err := pow.ParseDifficulty(n)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvDifficulty)
		}
		c.Difficulty = d
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvWorkers)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		t, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvTimeout)
		}
		c.Timeout = t
	}
	if v, ok := lookup(EnvMaxMarkerAttempts); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvMaxMarkerAttempts)
		}
		c.MaxMarkerAttempts = n
	}
	return nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Difficulty.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	if c.LogFormat != FormatText && c.LogFormat != FormatJSON {
		return errors.Errorf("log_format must be %q or %q, got %q", FormatText, FormatJSON, c.LogFormat)
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.MaxMarkerAttempts < 1 {
		return errors.Errorf("max_marker_attempts must be at least 1, got %d", c.MaxMarkerAttempts)
	}
	return nil
}

// Load returns defaults overlaid with the file at path (if non-empty) and
// the process environment, then validated.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
