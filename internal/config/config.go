// Package config resolves the session configuration from command-line
// flags, AUTOTIME_* environment variables and an optional YAML file, in
// that order of priority.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/format"
	"github.com/agbru/autotime/internal/logging"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/timer"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUTOTIME_"

// Display modes of the live timer line.
const (
	DisplayLine    = "line"
	DisplaySpinner = "spinner"
	DisplayPlain   = "plain"
)

// AppConfig is the resolved session configuration.
type AppConfig struct {
	ConfigFile      string
	Interval        time.Duration
	TimestampLayout string
	Display         string
	// UnitOverrides holds the raw --unit name=label pairs.
	UnitOverrides []string
	// Units is the resolved unit table: defaults, then the file, then
	// AUTOTIME_UNITS unless --unit is given, then --unit.
	Units        format.Units
	Shell        string
	Timeout      time.Duration
	Script       string
	KeepGoing    bool
	TUI          bool
	Quiet        bool
	NoColor      bool
	NoAutoload   bool
	MetricsAddr  string
	OTLPEndpoint string
	LogLevel     string
	HistorySize  int
	Completion   string
	Version      bool
	// Command is the argv after the flags, run as a single unit.
	Command []string
}

// Default returns the configuration before any source is applied.
func Default() AppConfig {
	return AppConfig{
		Interval:        timer.DefaultInterval,
		TimestampLayout: format.TimestampLayout,
		Display:         DisplayLine,
		Units:           format.DefaultUnits(),
		LogLevel:        "warn",
		HistorySize:     shell.DefaultHistorySize,
	}
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// ParseConfig parses args (without the program name) into an AppConfig.
// flag.ErrHelp is returned unchanged when -h or --help is given.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	cfg := Default()
	var units stringList

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)
	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags] [-- command args...]\n\n", programName)
		fmt.Fprintln(errWriter, "Shows a live elapsed-time line for each unit of work.")
		fmt.Fprintln(errWriter, "Without a command or --script an interactive session starts.")
		fmt.Fprintln(errWriter)
		fmt.Fprintln(errWriter, "Flags:")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.ConfigFile, "config", "", "Path to a YAML configuration file.")
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Refresh interval of the live timer line.")
	fs.StringVar(&cfg.TimestampLayout, "timestamp-layout", cfg.TimestampLayout, "Go time layout for start and end timestamps.")
	fs.StringVar(&cfg.Display, "display", cfg.Display, "Timer display: line, spinner or plain.")
	fs.Var(&units, "unit", "Override a unit label, name=label (repeatable).")
	fs.StringVar(&cfg.Shell, "shell", "", "Shell used to run command lines (default $SHELL or /bin/sh).")
	fs.DurationVar(&cfg.Timeout, "timeout", 0, "Per-unit time limit (0 disables it).")
	fs.StringVar(&cfg.Script, "script", "", "Run each line of FILE as a unit of work.")
	fs.BoolVar(&cfg.KeepGoing, "keep-going", false, "Continue a script after a failed unit.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Show the dashboard instead of the timer line.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Do not display timings.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable coloured output.")
	fs.BoolVar(&cfg.NoAutoload, "no-autoload", false, "Do not load the timing extension at startup.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address.")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", "", "Export unit spans to this OTLP/HTTP collector (host:port).")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error.")
	fs.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "Number of units kept in the session history.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")
	fs.BoolVar(&cfg.Version, "version", false, "Print the version and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	cfg.Command = fs.Args()
	cfg.UnitOverrides = units

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = getEnvString("CONFIG", "")
	}
	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		if err := file.apply(&cfg, fs); err != nil {
			return AppConfig{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, fs); err != nil {
		return AppConfig{}, err
	}

	if len(cfg.UnitOverrides) > 0 {
		overrides, err := format.ParseOverrides(cfg.UnitOverrides)
		if err != nil {
			return AppConfig{}, apperrors.NewConfigError("--unit: %v", err)
		}
		if err := cfg.Units.Set(overrides); err != nil {
			return AppConfig{}, apperrors.NewConfigError("--unit: %v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and mode combinations.
func (c AppConfig) Validate() error {
	if c.Interval <= 0 {
		return apperrors.NewConfigError("interval must be positive, got %s", c.Interval)
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("timeout must not be negative, got %s", c.Timeout)
	}
	if c.HistorySize <= 0 {
		return apperrors.NewConfigError("history must be positive, got %d", c.HistorySize)
	}
	if strings.TrimSpace(c.TimestampLayout) == "" {
		return apperrors.NewConfigError("timestamp layout must not be empty")
	}
	switch c.Display {
	case DisplayLine, DisplaySpinner, DisplayPlain:
	default:
		return apperrors.NewConfigError("unknown display %q (want line, spinner or plain)", c.Display)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell for completion: %s (supported: bash, zsh, fish)", c.Completion)
	}
	if c.Script != "" && len(c.Command) > 0 {
		return apperrors.NewConfigError("--script and a command are mutually exclusive")
	}
	if c.TUI && c.Script == "" && len(c.Command) == 0 {
		return apperrors.NewConfigError("--tui needs --script or a command")
	}
	return nil
}

// Interactive reports whether the configuration starts the REPL.
func (c AppConfig) Interactive() bool {
	return c.Script == "" && len(c.Command) == 0
}
