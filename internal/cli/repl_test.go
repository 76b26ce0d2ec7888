package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/agbru/autotime/internal/display"
	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/hooks"
	"github.com/agbru/autotime/internal/logging"
	"github.com/agbru/autotime/internal/metrics"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/sysmon"
	"github.com/agbru/autotime/internal/timer"
	"github.com/agbru/autotime/internal/ui"
)

func TestMain(m *testing.M) {
	ui.InitTheme(true)
	os.Exit(m.Run())
}

type session struct {
	repl *REPL
	rec  *display.Recorder
	tm   *timer.Timer
	out  *bytes.Buffer
}

func newSession(t *testing.T, attach bool) *session {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	rec := display.NewRecorder()
	tm := timer.New(rec)
	ev := hooks.NewEvents(logging.Nop())
	ext := hooks.NewExtension(tm, logging.Nop(), nil)
	if attach {
		if err := ext.Attach(ev); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	kernel := shell.NewKernel(shell.Config{
		Shell:  "/bin/sh",
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &out,
	}, ev)

	r := NewREPL(REPLConfig{
		Kernel:    kernel,
		Extension: ext,
		Timer:     tm,
		Metrics:   metrics.New(),
		Sample: func(context.Context) sysmon.Stats {
			return sysmon.Stats{CPUPercent: 12.5, MemPercent: 40, MemUsed: 1 << 30, MemTotal: 4 << 30}
		},
	})
	r.SetOutput(&out)
	return &session{repl: r, rec: rec, tm: tm, out: &out}
}

func (s *session) run(t *testing.T, input string) string {
	t.Helper()
	s.repl.SetInput(strings.NewReader(input))
	if err := s.repl.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return s.out.String()
}

func finishedTexts(rec *display.Recorder) []string {
	var out []string
	for _, e := range rec.Events() {
		if e.Op == display.OpFinish {
			out = append(out, e.Text)
		}
	}
	return out
}

func TestREPLTimesEachLine(t *testing.T) {
	s := newSession(t, true)
	out := s.run(t, "echo hello\ntrue\n%exit\n")

	if !strings.Contains(out, "hello\n") {
		t.Errorf("output missing command output:\n%s", out)
	}
	done := finishedTexts(s.rec)
	if len(done) != 2 {
		t.Fatalf("finished lines = %d, want 2: %v", len(done), done)
	}
	for _, text := range done {
		if !strings.HasPrefix(text, timer.DoneMarker) {
			t.Errorf("finished text %q lacks done marker", text)
		}
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Error("exit did not say goodbye")
	}
}

func TestREPLLoadExtTimesLoadingLine(t *testing.T) {
	s := newSession(t, false)
	s.run(t, "true\n%load_ext autotime\ntrue\n")

	if got := len(finishedTexts(s.rec)); got != 2 {
		t.Errorf("finished lines = %d, want 2 (loading line and the next)", got)
	}
}

func TestREPLLoadExtTwice(t *testing.T) {
	s := newSession(t, true)
	out := s.run(t, "%load_ext autotime\n")

	if !strings.Contains(out, "already loaded") {
		t.Errorf("output = %q, want already-loaded notice", out)
	}
}

func TestREPLUnloadExt(t *testing.T) {
	s := newSession(t, true)
	s.run(t, "true\n%unload_ext autotime\ntrue\n")

	// The unloading line is finished then cleared; the last line is untimed.
	if got := len(finishedTexts(s.rec)); got != 2 {
		t.Errorf("finished lines = %d, want 2", got)
	}
	if s.rec.Count(display.OpClear) != 1 {
		t.Errorf("clear count = %d, want 1", s.rec.Count(display.OpClear))
	}
	if s.tm.Running() {
		t.Error("timer still running after unload")
	}
}

func TestREPLUnknownExtension(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "%load_ext other\n")

	if !strings.Contains(out, `no extension named "other"`) {
		t.Errorf("output = %q", out)
	}
}

func TestREPLUnits(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "%units sec=seconds\n%units bogus=x\n")

	if got := s.tm.Units().Sec; got != "seconds" {
		t.Errorf("Sec label = %q, want seconds", got)
	}
	if !strings.Contains(out, "seconds") {
		t.Errorf("units table missing new label:\n%s", out)
	}
	if !strings.Contains(out, "Error:") || !strings.Contains(out, "bogus") {
		t.Errorf("rejected override not reported:\n%s", out)
	}
	if got := s.tm.Units().Sec; got != "seconds" {
		t.Errorf("rejected override changed the table: Sec = %q", got)
	}
}

func TestREPLHistory(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "echo one\nexit 3\n%history\n")

	for _, want := range []string{"echo one", "exit 3", "ok", "[exit 3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestREPLHistoryBadCount(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "%history zero\n")

	if !strings.Contains(out, "positive count") {
		t.Errorf("output = %q", out)
	}
}

func TestREPLStats(t *testing.T) {
	s := newSession(t, true)
	out := s.run(t, "true\n%stats\n")

	for _, want := range []string{"Units:", "Extension:       yes", "cpu 12.5%"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestREPLUnknownMagic(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "%frobnicate\n")

	if !strings.Contains(out, "unknown magic") {
		t.Errorf("output = %q", out)
	}
}

func TestREPLHelp(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "%help\n")

	for _, name := range magicOrder {
		if !strings.Contains(out, "%"+name) {
			t.Errorf("help missing %%%s", name)
		}
	}
}

func TestREPLEOF(t *testing.T) {
	s := newSession(t, false)
	out := s.run(t, "echo last")

	if !strings.Contains(out, "last\n") || !strings.Contains(out, "Goodbye!") {
		t.Errorf("unterminated last line not run before EOF:\n%s", out)
	}
}

func TestREPLCancelledContext(t *testing.T) {
	s := newSession(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.repl.SetInput(strings.NewReader("echo never\n"))

	if err := s.repl.Start(ctx); err != context.Canceled {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
	if strings.Contains(s.out.String(), "never") {
		t.Error("line ran after cancellation")
	}
}

func TestFormatStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		code   int
		want   string
	}{
		{metrics.StatusOK, 0, "ok"},
		{metrics.StatusCanceled, -1, "canceled"},
		{metrics.StatusTimeout, -1, "timed out"},
		{metrics.StatusFailed, 2, "exit 2"},
		{metrics.StatusFailed, -1, "failed"},
	}
	for _, tt := range tests {
		if got := FormatStatus(tt.status, tt.code); got != tt.want {
			t.Errorf("FormatStatus(%q, %d) = %q, want %q", tt.status, tt.code, got, tt.want)
		}
	}
}

func TestReportRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  shell.Record
		want string
	}{
		{"exit status", shell.Record{ExitCode: 2, Err: apperrors.CommandError{ExitCode: 2}}, "[exit 2]"},
		{"interrupted", shell.Record{ExitCode: -1, Err: apperrors.CommandError{ExitCode: -1, Cause: context.Canceled}}, "Interrupted"},
		{"timed out", shell.Record{ExitCode: -1, Err: apperrors.CommandError{Command: "sleep 9", ExitCode: -1,
			Cause: apperrors.TimeoutError{Operation: "sleep 9", Limit: time.Second}}}, "Timed out: command \"sleep 9\" failed"},
		{"other failure", shell.Record{ExitCode: -1, Err: errUnknownMagic}, "Error: unknown magic"},
		{"hook failure", shell.Record{HookErr: errors.New("post_run_cell/autotime: boom")}, "Warning: post_run_cell/autotime: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			r := NewREPL(REPLConfig{})
			r.SetOutput(&out)
			r.reportRecord(tt.rec)
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
