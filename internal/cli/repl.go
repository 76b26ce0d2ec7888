package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/format"
	"github.com/agbru/autotime/internal/hooks"
	"github.com/agbru/autotime/internal/metrics"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/sysmon"
	"github.com/agbru/autotime/internal/timer"
	"github.com/agbru/autotime/internal/ui"
)

// REPLConfig wires a REPL to its session.
type REPLConfig struct {
	Kernel    *shell.Kernel
	Extension *hooks.Extension
	Timer     *timer.Timer
	// Metrics feeds %stats. Nil disables the counters section.
	Metrics *metrics.Metrics
	// Sample feeds the system section of %stats. Nil uses sysmon.Sample.
	Sample func(context.Context) sysmon.Stats
	// Prompt replaces the default prompt text.
	Prompt string
	// TimestampLayout formats start times in %history.
	TimestampLayout string
}

// REPL is an interactive session. Every input line, magics included, runs
// as one unit of work so the timing extension reports on it.
type REPL struct {
	config REPLConfig
	in     io.Reader
	out    io.Writer
	magics map[string]magic
}

// magic handles one %command.
type magic struct {
	usage string
	help  string
	run   func(r *REPL, ctx context.Context, args []string) error
}

const defaultPrompt = "autotime> "

// NewREPL creates a REPL reading os.Stdin and writing os.Stdout.
func NewREPL(config REPLConfig) *REPL {
	if config.Sample == nil {
		config.Sample = sysmon.Sample
	}
	if config.Prompt == "" {
		config.Prompt = defaultPrompt
	}
	if config.TimestampLayout == "" {
		config.TimestampLayout = format.TimestampLayout
	}
	return &REPL{
		config: config,
		in:     os.Stdin,
		out:    os.Stdout,
		magics: builtinMagics(),
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets the writer for prompts and magic output. Pass the
// display-wrapped writer so output does not tear the live timer line.
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start runs the session until %exit, EOF or ctx cancellation.
func (r *REPL) Start(ctx context.Context) error {
	r.printBanner()
	fmt.Fprintf(r.out, "Type %s%%help%s for commands. Any other line runs in the shell.\n\n", ui.ColorCyan(), ui.ColorReset())

	reader := bufio.NewReader(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, ui.ColorGreen()+r.config.Prompt+ui.ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return apperrors.WrapError(err, "read input")
		}
		eof := errors.Is(err, io.EOF)

		line := strings.TrimSpace(input)
		if line != "" && !r.processLine(ctx, line) {
			return nil
		}
		if eof {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return nil
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s⏱  autotime - Interactive Session%s                    %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

// processLine runs line as a unit of work. It returns false when the
// session should end.
func (r *REPL) processLine(ctx context.Context, line string) bool {
	switch line {
	case "%exit", "%quit", "exit", "quit":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	}

	// Ctrl-C interrupts the running unit, not the session.
	cellCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var rec shell.Record
	if strings.HasPrefix(line, "%") {
		rec = r.config.Kernel.RunCell(cellCtx, line, func(ctx context.Context) error {
			return r.runMagic(ctx, line)
		})
	} else {
		rec = r.config.Kernel.RunCommand(cellCtx, line)
	}
	r.reportRecord(rec)
	return true
}

func (r *REPL) reportRecord(rec shell.Record) {
	if rec.HookErr != nil {
		fmt.Fprintf(r.out, "%sWarning: %v%s\n", ui.ColorYellow(), rec.HookErr, ui.ColorReset())
	}
	if rec.Err == nil {
		return
	}

	var cmdErr apperrors.CommandError
	switch {
	case errors.As(rec.Err, &cmdErr) && cmdErr.ExitCode >= 0:
		fmt.Fprintf(r.out, "%s[exit %d]%s\n", ui.ColorRed(), cmdErr.ExitCode, ui.ColorReset())
	case rec.Status() == metrics.StatusCanceled:
		fmt.Fprintf(r.out, "%sInterrupted%s\n", ui.ColorYellow(), ui.ColorReset())
	case rec.Status() == metrics.StatusTimeout:
		fmt.Fprintf(r.out, "%sTimed out: %v%s\n", ui.ColorRed(), rec.Err, ui.ColorReset())
	default:
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), rec.Err, ui.ColorReset())
	}
}

// errUnknownMagic is returned for a % line that names no magic.
var errUnknownMagic = errors.New("unknown magic")

func (r *REPL) runMagic(ctx context.Context, line string) error {
	fields := strings.Fields(strings.TrimPrefix(line, "%"))
	if len(fields) == 0 {
		return fmt.Errorf("%w: %q (type %%help)", errUnknownMagic, line)
	}
	m, ok := r.magics[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("%w: %%%s (type %%help)", errUnknownMagic, fields[0])
	}
	return m.run(r, ctx, fields[1:])
}
