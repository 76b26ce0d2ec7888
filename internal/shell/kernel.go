package shell

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/hooks"
	"github.com/agbru/autotime/internal/logging"
	"github.com/agbru/autotime/internal/metrics"
)

// DefaultHistorySize is the number of records kept when none is configured.
const DefaultHistorySize = 100

// waitDelay bounds how long a cancelled command may hold its output pipes.
const waitDelay = 500 * time.Millisecond

const tracerName = "github.com/agbru/autotime/internal/shell"

// Config configures a Kernel.
type Config struct {
	// Shell runs each command line as `Shell -c line`. Empty means $SHELL,
	// then /bin/sh.
	Shell string
	// Timeout bounds each unit of work. Zero disables it.
	Timeout time.Duration
	// HistorySize caps the kept records.
	HistorySize int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Kernel executes units of work and fires lifecycle events around them.
// Units run one at a time.
type Kernel struct {
	cfg     Config
	events  *hooks.Events
	metrics *metrics.Metrics
	logger  logging.Logger
	tracer  trace.Tracer

	// run serializes units of work.
	run sync.Mutex

	mu      sync.Mutex
	count   int
	history *history
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithMetrics records every unit in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(k *Kernel) { k.metrics = m }
}

// WithLogger sets the kernel logger.
func WithLogger(l logging.Logger) Option {
	return func(k *Kernel) { k.logger = l }
}

// WithTracerProvider replaces the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(k *Kernel) { k.tracer = tp.Tracer(tracerName) }
}

// NewKernel returns a Kernel firing events on ev.
func NewKernel(cfg Config, ev *hooks.Events, opts ...Option) *Kernel {
	if cfg.Shell == "" {
		cfg.Shell = DefaultShell()
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	k := &Kernel{
		cfg:     cfg,
		events:  ev,
		logger:  logging.Nop(),
		tracer:  otel.Tracer(tracerName),
		history: newHistory(cfg.HistorySize),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// DefaultShell returns $SHELL, or /bin/sh when it is unset.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Events returns the registry the kernel fires.
func (k *Kernel) Events() *hooks.Events {
	return k.events
}

// RunCell runs body as one unit of work named source. The post event fires
// even when body fails or ctx is cancelled.
func (k *Kernel) RunCell(ctx context.Context, source string, body func(ctx context.Context) error) Record {
	k.run.Lock()
	defer k.run.Unlock()

	k.mu.Lock()
	k.count++
	index := k.count
	k.mu.Unlock()

	ctx, span := k.tracer.Start(ctx, "autotime.unit", trace.WithAttributes(
		attribute.Int("autotime.index", index),
		attribute.String("autotime.command", source),
	))
	defer span.End()

	rec := Record{Index: index, Command: source, ExitCode: -1}
	preErr := k.events.Trigger(ctx, hooks.PreRunCell)

	rec.Start = time.Now()
	rec.Err = body(ctx)
	rec.End = time.Now()
	rec.Elapsed = rec.End.Sub(rec.Start)

	postErr := k.events.Trigger(context.WithoutCancel(ctx), hooks.PostRunCell)
	rec.HookErr = errors.Join(preErr, postErr)

	var cmdErr apperrors.CommandError
	switch {
	case rec.Err == nil:
		rec.ExitCode = 0
	case errors.As(rec.Err, &cmdErr):
		rec.ExitCode = cmdErr.ExitCode
	}

	span.SetAttributes(attribute.Int("autotime.exit_code", rec.ExitCode))
	if rec.Err != nil {
		span.RecordError(rec.Err)
		span.SetStatus(codes.Error, rec.Err.Error())
		k.logger.Debug("unit failed", logging.Int("index", index), logging.String("command", source), logging.Err(rec.Err))
	}
	if k.metrics != nil {
		k.metrics.ObserveUnit(rec.Status(), rec.Elapsed)
	}

	k.mu.Lock()
	k.history.add(rec)
	k.mu.Unlock()
	return rec
}

// RunCommand runs line with the configured shell as one unit of work.
func (k *Kernel) RunCommand(ctx context.Context, line string) Record {
	return k.RunCell(ctx, line, func(ctx context.Context) error {
		return k.exec(ctx, line)
	})
}

// RunArgs runs argv directly, without a shell, as one unit of work.
func (k *Kernel) RunArgs(ctx context.Context, argv []string) Record {
	source := strings.Join(argv, " ")
	return k.RunCell(ctx, source, func(ctx context.Context) error {
		if len(argv) == 0 {
			return apperrors.ValidationError{Field: "command", Message: "empty command"}
		}
		return k.execArgv(ctx, source, argv[0], argv[1:]...)
	})
}

// RunScript runs each command of script in order. Without keepGoing it stops
// at the first failed unit and returns its error.
func (k *Kernel) RunScript(ctx context.Context, script []string, keepGoing bool) ([]Record, error) {
	records := make([]Record, 0, len(script))
	var firstErr error
	for _, line := range script {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		rec := k.RunCommand(ctx, line)
		records = append(records, rec)
		if rec.Err != nil && firstErr == nil {
			firstErr = rec.Err
			if !keepGoing {
				break
			}
		}
	}
	return records, firstErr
}

// History returns the kept records, oldest first.
func (k *Kernel) History() []Record {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.history.snapshot()
}

func (k *Kernel) exec(ctx context.Context, line string) error {
	return k.execArgv(ctx, line, k.cfg.Shell, "-c", line)
}

func (k *Kernel) execArgv(ctx context.Context, source, name string, args ...string) error {
	cmdCtx := ctx
	if k.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, k.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Stdin = k.cfg.Stdin
	cmd.Stdout = k.cfg.Stdout
	cmd.Stderr = k.cfg.Stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return apperrors.CommandError{
			Command:  source,
			ExitCode: -1,
			Cause:    apperrors.TimeoutError{Operation: source, Limit: k.cfg.Timeout},
		}
	case ctx.Err() != nil:
		return apperrors.CommandError{Command: source, ExitCode: -1, Cause: ctx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return apperrors.CommandError{Command: source, ExitCode: exitErr.ExitCode(), Cause: err}
	}
	return apperrors.CommandError{Command: source, ExitCode: -1, Cause: err}
}

// ParseScript reads one command per line, skipping blank lines and lines
// starting with '#'.
func ParseScript(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.WrapError(err, "read script")
	}
	return lines, nil
}
