package config

import (
	"flag"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/autotime/internal/errors"
)

// FileConfig is the YAML configuration file.
type FileConfig struct {
	// Units maps unit names to labels. Values stay untyped so that a
	// non-string label is reported instead of coerced.
	Units           map[string]any `yaml:"units"`
	Interval        string         `yaml:"interval"`
	TimestampLayout string         `yaml:"timestamp_layout"`
	Display         string         `yaml:"display"`
	Shell           string         `yaml:"shell"`
	Timeout         string         `yaml:"timeout"`
	KeepGoing       *bool          `yaml:"keep_going"`
	NoColor         *bool          `yaml:"no_color"`
	NoAutoload      *bool          `yaml:"no_autoload"`
	MetricsAddr     string         `yaml:"metrics_addr"`
	OTLPEndpoint    string         `yaml:"otlp_endpoint"`
	LogLevel        string         `yaml:"log_level"`
	History         int            `yaml:"history"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read config file: %v", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, apperrors.NewConfigError("failed to parse config file %s: %v", path, err)
	}
	return &fc, nil
}

// apply copies the file values into cfg for every flag not given on the
// command line.
func (fc *FileConfig) apply(cfg *AppConfig, fs *flag.FlagSet) error {
	if len(fc.Units) > 0 {
		if err := cfg.Units.Set(fc.Units); err != nil {
			return apperrors.NewConfigError("config file units: %v", err)
		}
	}

	if fc.Interval != "" && !isFlagSet(fs, "interval") {
		d, err := parseDurationField("interval", fc.Interval)
		if err != nil {
			return err
		}
		cfg.Interval = d
	}
	if fc.Timeout != "" && !isFlagSet(fs, "timeout") {
		d, err := parseDurationField("timeout", fc.Timeout)
		if err != nil {
			return err
		}
		cfg.Timeout = d
	}

	setString := func(dst *string, v, name string) {
		if v != "" && !isFlagSet(fs, name) {
			*dst = v
		}
	}
	setString(&cfg.TimestampLayout, fc.TimestampLayout, "timestamp-layout")
	setString(&cfg.Display, fc.Display, "display")
	setString(&cfg.Shell, fc.Shell, "shell")
	setString(&cfg.MetricsAddr, fc.MetricsAddr, "metrics-addr")
	setString(&cfg.OTLPEndpoint, fc.OTLPEndpoint, "otlp-endpoint")
	setString(&cfg.LogLevel, fc.LogLevel, "log-level")

	setBool := func(dst *bool, v *bool, name string) {
		if v != nil && !isFlagSet(fs, name) {
			*dst = *v
		}
	}
	setBool(&cfg.KeepGoing, fc.KeepGoing, "keep-going")
	setBool(&cfg.NoColor, fc.NoColor, "no-color")
	setBool(&cfg.NoAutoload, fc.NoAutoload, "no-autoload")

	if fc.History != 0 && !isFlagSet(fs, "history") {
		cfg.HistorySize = fc.History
	}
	return nil
}

func parseDurationField(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, apperrors.NewConfigError("config file %s: %v", name, err)
	}
	return d, nil
}
