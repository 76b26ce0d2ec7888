// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/format"
)

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// envOverride maps an env key (without the AUTOTIME_ prefix) to the flag it
// stands in for and a function applying the value.
type envOverride struct {
	envKey string
	flag   string
	apply  func(*AppConfig, string) error
}

// envOverrides is the table of every environment variable override.
var envOverrides = []envOverride{
	// Duration overrides
	{"INTERVAL", "interval", func(c *AppConfig, v string) error {
		return parseDurationEnv("INTERVAL", v, &c.Interval)
	}},
	{"TIMEOUT", "timeout", func(c *AppConfig, v string) error {
		return parseDurationEnv("TIMEOUT", v, &c.Timeout)
	}},

	// Numeric overrides
	{"HISTORY", "history", func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigError("%sHISTORY: %v", EnvPrefix, err)
		}
		c.HistorySize = n
		return nil
	}},

	// String overrides
	{"TIMESTAMP_LAYOUT", "timestamp-layout", func(c *AppConfig, v string) error {
		c.TimestampLayout = v
		return nil
	}},
	{"DISPLAY", "display", func(c *AppConfig, v string) error {
		c.Display = v
		return nil
	}},
	{"SHELL", "shell", func(c *AppConfig, v string) error {
		c.Shell = v
		return nil
	}},
	{"METRICS_ADDR", "metrics-addr", func(c *AppConfig, v string) error {
		c.MetricsAddr = v
		return nil
	}},
	{"OTLP_ENDPOINT", "otlp-endpoint", func(c *AppConfig, v string) error {
		c.OTLPEndpoint = v
		return nil
	}},
	{"LOG_LEVEL", "log-level", func(c *AppConfig, v string) error {
		c.LogLevel = v
		return nil
	}},
	// AUTOTIME_UNITS is a comma-separated list of name=label pairs.
	{"UNITS", "unit", func(c *AppConfig, v string) error {
		overrides, err := format.ParseOverrides(strings.Split(v, ","))
		if err != nil {
			return apperrors.NewConfigError("%sUNITS: %v", EnvPrefix, err)
		}
		if err := c.Units.Set(overrides); err != nil {
			return apperrors.NewConfigError("%sUNITS: %v", EnvPrefix, err)
		}
		return nil
	}},

	// Boolean overrides
	{"KEEP_GOING", "keep-going", func(c *AppConfig, v string) error {
		c.KeepGoing = parseBoolEnv(v, c.KeepGoing)
		return nil
	}},
	{"QUIET", "quiet", func(c *AppConfig, v string) error {
		c.Quiet = parseBoolEnv(v, c.Quiet)
		return nil
	}},
	{"NO_COLOR", "no-color", func(c *AppConfig, v string) error {
		c.NoColor = parseBoolEnv(v, c.NoColor)
		return nil
	}},
	{"NO_AUTOLOAD", "no-autoload", func(c *AppConfig, v string) error {
		c.NoAutoload = parseBoolEnv(v, c.NoAutoload)
		return nil
	}},
	{"TUI", "tui", func(c *AppConfig, v string) error {
		c.TUI = parseBoolEnv(v, c.TUI)
		return nil
	}},
}

func parseDurationEnv(key, v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return apperrors.NewConfigError("%s%s: %v", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}

// parseBoolEnv accepts "true", "1", "yes" and "false", "0", "no"
// (case-insensitive). Anything else yields defaultVal.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies AUTOTIME_* values for every flag not set on the
// command line: CLI flags > environment > config file > defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSet(fs, o.flag) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(config, val); err != nil {
				return err
			}
		}
	}
	return nil
}
