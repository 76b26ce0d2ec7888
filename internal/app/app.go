package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agbru/autotime/internal/cli"
	"github.com/agbru/autotime/internal/config"
	"github.com/agbru/autotime/internal/display"
	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/hooks"
	"github.com/agbru/autotime/internal/logging"
	"github.com/agbru/autotime/internal/metrics"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/timer"
	"github.com/agbru/autotime/internal/tracing"
	"github.com/agbru/autotime/internal/tui"
	"github.com/agbru/autotime/internal/ui"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// Application represents the autotime application instance.
type Application struct {
	Config    config.AppConfig
	In        io.Reader
	ErrWriter io.Writer

	// isTerminal reports whether w is an interactive terminal.
	isTerminal func(w io.Writer) bool
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithInput sets the reader used by the interactive session and by a
// single command.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// WithTerminalCheck overrides terminal detection of the output stream.
func WithTerminalCheck(fn func(w io.Writer) bool) AppOption {
	return func(a *Application) { a.isTerminal = fn }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{In: os.Stdin, ErrWriter: errWriter, isTerminal: isTerminal}
	for _, opt := range opts {
		opt(app)
	}

	programName := "autotime"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		if !IsHelpError(err) {
			fmt.Fprintf(errWriter, "Error: %v\n", err)
		}
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// session holds the components shared by every run mode.
type session struct {
	logger    logging.Logger
	metrics   *metrics.Metrics
	sink      display.Sink
	tuiSink   *tui.Sink
	timer     *timer.Timer
	events    *hooks.Events
	extension *hooks.Extension
	kernel    *shell.Kernel
	stdout    io.Writer
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	ui.InitTheme(a.Config.NoColor)

	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	logger := logging.NewConsoleLogger(a.ErrWriter, "autotime", level)

	provider, err := tracing.Init(ctx, tracingConfig(a.Config.OTLPEndpoint))
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("trace exporter shutdown failed", logging.Err(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	g, gctx := errgroup.WithContext(ctx)
	if a.Config.MetricsAddr != "" {
		g.Go(func() error {
			if err := m.Serve(gctx, a.Config.MetricsAddr, logger); err != nil {
				logger.Error("metrics endpoint stopped", err)
			}
			return nil
		})
	}

	s, err := a.newSession(out, logger, m, provider)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		cancel()
		_ = g.Wait()
		return apperrors.ExitErrorGeneric
	}

	code := a.dispatch(ctx, s)
	cancel()
	_ = g.Wait()
	return code
}

// newSession builds the timer, the extension and the kernel for one run.
func (a *Application) newSession(out io.Writer, logger logging.Logger, m *metrics.Metrics, provider *tracing.Provider) (*session, error) {
	s := &session{logger: logger, metrics: m, stdout: out}

	switch {
	case a.Config.TUI:
		s.tuiSink = tui.NewSink()
		s.sink = s.tuiSink
	case a.Config.Quiet:
		s.sink = display.Discard
	case a.Config.Display == config.DisplaySpinner:
		s.sink = display.NewSpinnerSink(out)
	case a.Config.Display == config.DisplayPlain, !a.isTerminal(out):
		s.sink = display.NewPlainSink(out)
	default:
		s.sink = display.NewLineSink(out, ui.RunningLineStyle())
	}
	instrumented := m.InstrumentSink(s.sink)

	s.timer = timer.New(instrumented,
		timer.WithInterval(a.Config.Interval),
		timer.WithUnits(a.Config.Units),
		timer.WithLayout(a.Config.TimestampLayout),
		timer.WithLogger(logger),
	)

	s.events = hooks.NewEvents(logger)
	s.extension = hooks.NewExtension(s.timer, logger, func(res timer.Result) {
		logger.Debug("unit timed", logging.Duration("elapsed", res.Elapsed))
	})
	if !a.Config.NoAutoload {
		if err := s.extension.Attach(s.events); err != nil {
			return nil, err
		}
	}

	kcfg := shell.Config{
		Shell:       a.Config.Shell,
		Timeout:     a.Config.Timeout,
		HistorySize: a.Config.HistorySize,
		Stdout:      display.Wrap(instrumented, out),
		Stderr:      display.Wrap(instrumented, a.ErrWriter),
	}
	if a.Config.TUI {
		kcfg.Stdout, kcfg.Stderr = io.Discard, io.Discard
	}
	if len(a.Config.Command) > 0 && !a.Config.TUI {
		kcfg.Stdin = a.In
	}
	s.stdout = kcfg.Stdout
	if a.Config.TUI {
		s.stdout = out
	}
	s.kernel = shell.NewKernel(kcfg, s.events,
		shell.WithMetrics(m),
		shell.WithLogger(logger),
		shell.WithTracerProvider(provider.TracerProvider()),
	)
	return s, nil
}

func (a *Application) dispatch(ctx context.Context, s *session) int {
	switch {
	case a.Config.TUI:
		return a.runTUI(ctx, s)
	case len(a.Config.Command) > 0:
		return a.runCommand(ctx, s)
	case a.Config.Script != "":
		return a.runScript(ctx, s)
	default:
		return a.runREPL(ctx, s)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCommand runs the trailing argv as one unit and exits with its status.
func (a *Application) runCommand(ctx context.Context, s *session) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := s.kernel.RunArgs(ctx, a.Config.Command)
	a.reportFailure(rec)
	return commandExitStatus(rec)
}

// runScript runs each line of the script file as one unit.
func (a *Application) runScript(ctx context.Context, s *session) int {
	lines, err := a.loadScript()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := s.kernel.RunScript(ctx, lines, a.Config.KeepGoing)
	for _, rec := range records {
		a.reportFailure(rec)
	}
	return apperrors.ExitCodeFor(err)
}

// runTUI shows the dashboard while the script or the command runs.
func (a *Application) runTUI(ctx context.Context, s *session) int {
	single := len(a.Config.Command) > 0
	var units []string
	if !single {
		lines, err := a.loadScript()
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorConfig
		}
		units = lines
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	work := func(ctx context.Context, started func(string), finished func(shell.Record)) error {
		if single {
			started(strings.Join(a.Config.Command, " "))
			rec := s.kernel.RunArgs(ctx, a.Config.Command)
			finished(rec)
			return rec.Err
		}
		var firstErr error
		for _, line := range units {
			if err := ctx.Err(); err != nil {
				return err
			}
			started(line)
			rec := s.kernel.RunCommand(ctx, line)
			finished(rec)
			if rec.Err != nil && firstErr == nil {
				firstErr = rec.Err
				if !a.Config.KeepGoing {
					break
				}
			}
		}
		return firstErr
	}

	return tui.Run(ctx, s.tuiSink, work, tui.Options{
		Version: Version,
		Units:   a.Config.Units,
	})
}

// runREPL starts the interactive session.
func (a *Application) runREPL(ctx context.Context, s *session) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	repl := cli.NewREPL(cli.REPLConfig{
		Kernel:          s.kernel,
		Extension:       s.extension,
		Timer:           s.timer,
		Metrics:         s.metrics,
		TimestampLayout: a.Config.TimestampLayout,
	})
	repl.SetInput(a.In)
	repl.SetOutput(s.stdout)
	if err := repl.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) loadScript() ([]string, error) {
	f, err := os.Open(a.Config.Script)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot open script: %v", err)
	}
	defer f.Close()
	return shell.ParseScript(f)
}

// reportFailure prints why a unit failed when its own output does not say.
func (a *Application) reportFailure(rec shell.Record) {
	if rec.HookErr != nil {
		fmt.Fprintf(a.ErrWriter, "%s: %v\n", ui.Paint(ui.ColorYellow(), "Warning"), rec.HookErr)
	}
	if rec.Err == nil || rec.ExitCode > 0 {
		return
	}
	switch rec.Status() {
	case metrics.StatusCanceled:
		fmt.Fprintf(a.ErrWriter, "%s\n", ui.Paint(ui.ColorYellow(), "Interrupted"))
		return
	case metrics.StatusTimeout:
		fmt.Fprintf(a.ErrWriter, "%s: %v\n", ui.Paint(ui.ColorRed(), "Timed out"), rec.Err)
		return
	}
	fmt.Fprintf(a.ErrWriter, "%s: %v\n", ui.Paint(ui.ColorRed(), "Error"), rec.Err)
}

// commandExitStatus passes a command's own non-zero exit code through and
// maps the other failures to the application exit codes.
func commandExitStatus(rec shell.Record) int {
	if rec.ExitCode > 0 {
		return rec.ExitCode
	}
	return rec.ExitStatus()
}

// tracingConfig accepts the collector as host:port or as an http(s) URL.
// A plain http URL disables TLS.
func tracingConfig(endpoint string) tracing.Config {
	cfg := tracing.Config{ServiceVersion: Version, Endpoint: endpoint}
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		cfg.Endpoint, cfg.Insecure = rest, true
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		cfg.Endpoint = rest
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return cfg
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
