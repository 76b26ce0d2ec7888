package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/format"
	"github.com/agbru/autotime/internal/hooks"
	"github.com/agbru/autotime/internal/metrics"
	"github.com/agbru/autotime/internal/ui"
)

// magicOrder is the order %help lists the magics in.
var magicOrder = []string{"load_ext", "unload_ext", "units", "history", "stats", "help"}

func builtinMagics() map[string]magic {
	return map[string]magic{
		"load_ext": {
			usage: "%load_ext autotime",
			help:  "Start timing every unit of work",
			run:   (*REPL).cmdLoadExt,
		},
		"unload_ext": {
			usage: "%unload_ext autotime",
			help:  "Stop timing and clear the timer line",
			run:   (*REPL).cmdUnloadExt,
		},
		"units": {
			usage: "%units [name=label ...]",
			help:  "Show or override the unit labels",
			run:   (*REPL).cmdUnits,
		},
		"history": {
			usage: "%history [n]",
			help:  "List the last n units of work",
			run:   (*REPL).cmdHistory,
		},
		"stats": {
			usage: "%stats",
			help:  "Show session counters and a system sample",
			run:   (*REPL).cmdStats,
		},
		"help": {
			usage: "%help",
			help:  "Display this help",
			run:   (*REPL).cmdHelp,
		},
	}
}

func (r *REPL) cmdHelp(context.Context, []string) error {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, name := range magicOrder {
		m := r.magics[name]
		fmt.Fprintf(r.out, "  %s%-26s%s - %s\n", ui.ColorYellow(), m.usage, ui.ColorReset(), m.help)
	}
	fmt.Fprintf(r.out, "  %s%-26s%s - %s\n", ui.ColorYellow(), "%exit / %quit", ui.ColorReset(), "Exit the session")
	fmt.Fprintf(r.out, "  %s%-26s%s - %s\n", ui.ColorYellow(), "<command line>", ui.ColorReset(), "Run in the shell as a unit of work")
	return nil
}

func extensionArg(args []string) error {
	if len(args) != 1 {
		return apperrors.ValidationError{Field: "extension", Message: "expected exactly one extension name"}
	}
	if args[0] != hooks.ExtensionName {
		return fmt.Errorf("no extension named %q", args[0])
	}
	return nil
}

func (r *REPL) cmdLoadExt(ctx context.Context, args []string) error {
	if err := extensionArg(args); err != nil {
		return err
	}
	err := r.config.Extension.Load(ctx, r.config.Kernel.Events())
	if errors.Is(err, hooks.ErrAlreadyLoaded) {
		fmt.Fprintf(r.out, "The %s extension is already loaded.\n", hooks.ExtensionName)
		return nil
	}
	return err
}

func (r *REPL) cmdUnloadExt(ctx context.Context, args []string) error {
	if err := extensionArg(args); err != nil {
		return err
	}
	err := r.config.Extension.Unload(ctx, r.config.Kernel.Events())
	if errors.Is(err, hooks.ErrNotLoaded) {
		fmt.Fprintf(r.out, "The %s extension is not loaded.\n", hooks.ExtensionName)
		return nil
	}
	return err
}

// cmdUnits prints the unit table, or applies name=label overrides. A
// rejected override leaves the table unchanged.
func (r *REPL) cmdUnits(_ context.Context, args []string) error {
	units := r.config.Timer.Units()
	if len(args) > 0 {
		overrides, err := format.ParseOverrides(args)
		if err != nil {
			return err
		}
		if err := units.Set(overrides); err != nil {
			return err
		}
		r.config.Timer.SetUnits(units)
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("Unit", "Label")
	for _, name := range format.UnitNames {
		label, _ := units.Get(name)
		table.Append(name, label)
	}
	return table.Render()
}

func (r *REPL) cmdHistory(_ context.Context, args []string) error {
	records := r.config.Kernel.History()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return apperrors.ValidationError{Field: "n", Message: fmt.Sprintf("expected a positive count, got %q", args[0])}
		}
		if n < len(records) {
			records = records[len(records)-n:]
		}
	}
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No units of work yet")
		return nil
	}

	units := r.config.Timer.Units()
	table := tablewriter.NewWriter(r.out)
	table.Header("#", "Command", "Start", "Elapsed", "Status")
	for _, rec := range records {
		table.Append(
			strconv.Itoa(rec.Index),
			rec.Command,
			format.FormatTimestamp(rec.Start, r.config.TimestampLayout),
			format.FormatDuration(rec.Elapsed, units),
			FormatStatus(rec.Status(), rec.ExitCode),
		)
	}
	return table.Render()
}

// FormatStatus renders a unit status for tables.
func FormatStatus(status string, exitCode int) string {
	switch status {
	case metrics.StatusOK:
		return "ok"
	case metrics.StatusCanceled:
		return "canceled"
	case metrics.StatusTimeout:
		return "timed out"
	}
	if exitCode >= 0 {
		return fmt.Sprintf("exit %d", exitCode)
	}
	return "failed"
}

func (r *REPL) cmdStats(ctx context.Context, _ []string) error {
	units := r.config.Timer.Units()

	fmt.Fprintf(r.out, "%sSession%s\n", ui.ColorBold(), ui.ColorReset())
	if r.config.Metrics != nil {
		sum, err := r.config.Metrics.Summary()
		if err != nil {
			return apperrors.WrapError(err, "gather metrics")
		}
		fmt.Fprintf(r.out, "  Units:           %s%d%s (ok %d, failed %d, canceled %d, timed out %d)\n",
			ui.ColorCyan(), sum.Count, ui.ColorReset(),
			sum.Units[metrics.StatusOK], sum.Units[metrics.StatusFailed], sum.Units[metrics.StatusCanceled], sum.Units[metrics.StatusTimeout])
		fmt.Fprintf(r.out, "  Total time:      %s%s%s\n", ui.ColorCyan(), format.FormatTimespan(sum.TotalSeconds, units), ui.ColorReset())
		fmt.Fprintf(r.out, "  Display updates: %s%d%s\n", ui.ColorCyan(), sum.DisplayUpdates, ui.ColorReset())
	}
	loaded := "no"
	if r.config.Extension.Loaded() {
		loaded = "yes"
	}
	fmt.Fprintf(r.out, "  Extension:       %s%s%s\n", ui.ColorCyan(), loaded, ui.ColorReset())
	fmt.Fprintf(r.out, "  Process memory:  %s%s%s\n", ui.ColorCyan(), metrics.NewMemoryCollector().Snapshot(), ui.ColorReset())

	fmt.Fprintf(r.out, "%sSystem%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %s\n", r.config.Sample(ctx))
	return nil
}
