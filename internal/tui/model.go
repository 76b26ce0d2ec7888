package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/format"
	"github.com/agbru/autotime/internal/metrics"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/sysmon"
)

// Work runs the units of a batch session. It calls started before each
// unit and finished with its record.
type Work func(ctx context.Context, started func(command string), finished func(shell.Record)) error

// Options configures the dashboard.
type Options struct {
	Version string
	Units   format.Units
	// Sample reads system usage. Nil uses sysmon.Sample.
	Sample func(context.Context) sysmon.Stats
	// SampleEvery is the footer sampling period.
	SampleEvery time.Duration
}

const (
	defaultSampleEvery = time.Second
	sparkSamples       = 30
	headerHeight       = 1
	footerHeight       = 2
	minBodyHeight      = 3
)

// unitRow is one completed unit in the list.
type unitRow struct {
	record shell.Record
	line   string
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header  HeaderModel
	spinner spinner.Model
	keymap  KeyMap

	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	running   string
	live      string
	liveFinal string
	rows      []unitRow
	offset    int

	cpu   *RingBuffer
	mem   *RingBuffer
	stats sysmon.Stats

	width  int
	height int

	done     bool
	quitting bool
	exitCode int
}

// NewModel creates the dashboard model. Cancelling ctx, or pressing a quit
// key, stops the work in progress.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Sample == nil {
		opts.Sample = sysmon.Sample
	}
	if opts.SampleEvery <= 0 {
		opts.SampleEvery = defaultSampleEvery
	}
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = runningLineStyle

	return Model{
		header:   NewHeaderModel(opts.Version, opts.Units),
		spinner:  sp,
		keymap:   DefaultKeyMap(),
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		cpu:      NewRingBuffer(sparkSamples),
		mem:      NewRingBuffer(sparkSamples),
		exitCode: apperrors.ExitSuccess,
	}
}

// Context returns the context the work should run under.
func (m Model) Context() context.Context { return m.ctx }

// ExitCode returns the session exit status.
func (m Model) ExitCode() int { return m.exitCode }

// Init starts the spinner and the sampling ticks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, sampleSysStatsCmd(m.ctx, m.opts.Sample), tickCmd(m.opts.SampleEvery))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		return m, nil

	case LineMsg:
		if msg.Final {
			m.liveFinal = msg.Text
			m.live = ""
		} else {
			m.live = msg.Text
		}
		return m, nil

	case ClearMsg:
		m.live = ""
		return m, nil

	case UnitStartedMsg:
		m.running = msg.Command
		m.live = ""
		m.liveFinal = ""
		return m, nil

	case UnitDoneMsg:
		m.rows = append(m.rows, unitRow{record: msg.Record, line: m.liveFinal})
		m.running = ""
		m.liveFinal = ""
		m.offset = m.maxOffset()
		return m, nil

	case WorkDoneMsg:
		m.done = true
		m.running = ""
		m.header.SetDone()
		if !m.quitting {
			m.exitCode = apperrors.ExitCodeFor(msg.Err)
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		return m, tea.Batch(sampleSysStatsCmd(m.ctx, m.opts.Sample), tickCmd(m.opts.SampleEvery))

	case SysStatsMsg:
		m.stats = msg.Stats
		m.cpu.Push(msg.Stats.CPUPercent)
		m.mem.Push(msg.Stats.MemPercent)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		if m.done {
			return m, tea.Quit
		}
		// Wait for the work to unwind so the last unit's record is kept.
		m.quitting = true
		m.exitCode = apperrors.ExitErrorCanceled
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.offset = max(m.offset-1, 0)
	case key.Matches(msg, m.keymap.Down):
		m.offset = min(m.offset+1, m.maxOffset())
	case key.Matches(msg, m.keymap.PageUp):
		m.offset = max(m.offset-m.listHeight(), 0)
	case key.Matches(msg, m.keymap.PageDown):
		m.offset = min(m.offset+m.listHeight(), m.maxOffset())
	}
	return m, nil
}

// listHeight is the number of unit rows the body shows.
func (m Model) listHeight() int {
	// Panel borders and the live row take three lines.
	return max(m.height-headerHeight-footerHeight-3, minBodyHeight)
}

func (m Model) maxOffset() int {
	return max(len(m.rows)-m.listHeight(), 0)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	body := panelStyle.Width(max(m.width-2, 0)).Render(m.bodyView())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footerView())
}

func (m Model) bodyView() string {
	var b strings.Builder
	end := min(m.offset+m.listHeight(), len(m.rows))
	for _, row := range m.rows[m.offset:end] {
		b.WriteString(formatRow(row))
		b.WriteByte('\n')
	}

	switch {
	case m.running != "":
		fmt.Fprintf(&b, "%s %s  %s", m.spinner.View(), commandStyle.Render(m.running), runningLineStyle.Render(m.live))
	case m.done:
		b.WriteString(statusDoneStyle.Render(fmt.Sprintf("Done: %d unit(s)", len(m.rows))))
	default:
		b.WriteString(versionStyle.Render("Waiting for work..."))
	}
	return b.String()
}

func formatRow(row unitRow) string {
	rec := row.record
	line := doneLineStyle.Render(row.line)
	if rec.Err != nil {
		status := "failed"
		switch rec.Status() {
		case metrics.StatusCanceled:
			status = "canceled"
		case metrics.StatusTimeout:
			status = "timed out"
		default:
			if rec.ExitCode >= 0 {
				status = fmt.Sprintf("exit %d", rec.ExitCode)
			}
		}
		line += " " + failedStyle.Render("["+status+"]")
	}
	return fmt.Sprintf("%s %s  %s", indexStyle.Render(fmt.Sprintf("#%d", rec.Index)), commandStyle.Render(rec.Command), line)
}

func (m Model) footerView() string {
	usage := fmt.Sprintf("%s %s  %s %s  %s",
		footerDescStyle.Render("CPU"), cpuSparkStyle.Render(RenderSparkline(m.cpu.Slice())),
		footerDescStyle.Render("MEM"), memSparkStyle.Render(RenderSparkline(m.mem.Slice())),
		footerDescStyle.Render(m.stats.String()))

	var keys []string
	for _, kb := range m.keymap.ShortHelp() {
		h := kb.Help()
		keys = append(keys, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	return usage + "\n" + strings.Join(keys, "  ")
}

// Run shows the dashboard while work runs, and returns the session exit
// status. sink must be the display sink of the session timer.
func Run(ctx context.Context, sink *Sink, work Work, opts Options) int {
	initTUIStyles()

	model := NewModel(ctx, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	sink.ref.SetProgram(p)
	ref := sink.ref

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := work(model.ctx,
			func(command string) { ref.Send(UnitStartedMsg{Command: command}) },
			func(rec shell.Record) { ref.Send(UnitDoneMsg{Record: rec}) },
		)
		ref.Send(WorkDoneMsg{Err: err})
	}()

	finalModel, err := p.Run()
	model.cancel()
	<-done
	switch {
	case errors.Is(err, tea.ErrProgramKilled):
		return apperrors.ExitErrorCanceled
	case err != nil:
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// tickCmd schedules the next system sample.
func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleSysStatsCmd reads system-wide CPU and memory usage.
func sampleSysStatsCmd(ctx context.Context, sample func(context.Context) sysmon.Stats) tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg{Stats: sample(ctx)}
	}
}
