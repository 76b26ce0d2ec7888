package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/format"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/sysmon"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(context.Background(), Options{
		Version: "v1.0.0",
		Units:   format.DefaultUnits(),
		Sample: func(context.Context) sysmon.Stats {
			return sysmon.Stats{CPUPercent: 50, MemPercent: 25, MemUsed: 1 << 30, MemTotal: 4 << 30}
		},
	})
	t.Cleanup(m.cancel)
	return apply(m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func apply(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModelInitializing(t *testing.T) {
	m := NewModel(context.Background(), Options{})
	defer m.cancel()
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q", got)
	}
}

func TestModelLiveLine(t *testing.T) {
	m := newTestModel(t)
	m = apply(m,
		UnitStartedMsg{Command: "sleep 1"},
		LineMsg{Handle: 1, Text: "⌛ 250 ms (2024-01-02T03:04:05)"},
	)

	view := m.View()
	for _, want := range []string{"autotime v1.0.0", "sleep 1", "⌛ 250 ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelCompletedUnits(t *testing.T) {
	m := newTestModel(t)
	m = apply(m,
		UnitStartedMsg{Command: "true"},
		LineMsg{Handle: 1, Text: "⌛ 1 ms"},
		LineMsg{Handle: 1, Text: "✔️ 2 ms (a/b)", Final: true},
		UnitDoneMsg{Record: shell.Record{Index: 1, Command: "true"}},
		UnitStartedMsg{Command: "false"},
		LineMsg{Handle: 2, Text: "✔️ 3 ms (c/d)", Final: true},
		UnitDoneMsg{Record: shell.Record{Index: 2, Command: "false", ExitCode: 1,
			Err: apperrors.CommandError{Command: "false", ExitCode: 1}}},
		WorkDoneMsg{Err: apperrors.CommandError{Command: "false", ExitCode: 1}},
	)

	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.rows))
	}
	if m.rows[0].line != "✔️ 2 ms (a/b)" || m.rows[1].line != "✔️ 3 ms (c/d)" {
		t.Errorf("rows = %+v", m.rows)
	}
	view := m.View()
	for _, want := range []string{"#1", "#2", "[exit 1]", "Done: 2 unit(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if m.ExitCode() != apperrors.ExitErrorUnit {
		t.Errorf("ExitCode() = %d, want %d", m.ExitCode(), apperrors.ExitErrorUnit)
	}
}

func TestModelClear(t *testing.T) {
	m := newTestModel(t)
	m = apply(m, UnitStartedMsg{Command: "x"}, LineMsg{Handle: 1, Text: "⌛ 1 s"}, ClearMsg{})
	if m.live != "" {
		t.Errorf("live = %q after clear", m.live)
	}
}

func TestModelSysStats(t *testing.T) {
	m := newTestModel(t)
	m = apply(m, SysStatsMsg{Stats: sysmon.Stats{CPUPercent: 100, MemPercent: 0}})

	if m.cpu.Last() != 100 || m.mem.Len() != 1 {
		t.Errorf("samples not recorded: cpu %v mem %d", m.cpu.Last(), m.mem.Len())
	}
	if !strings.Contains(m.View(), "█") {
		t.Error("footer missing CPU sparkline")
	}
}

func TestModelSampleCmd(t *testing.T) {
	m := newTestModel(t)
	msg := sampleSysStatsCmd(m.ctx, m.opts.Sample)()
	stats, ok := msg.(SysStatsMsg)
	if !ok || stats.Stats.CPUPercent != 50 {
		t.Errorf("sample cmd returned %#v", msg)
	}
}

func TestModelQuitWhileRunning(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)

	if cmd != nil {
		t.Error("quit while running should wait for the work to stop")
	}
	if !errors.Is(m.ctx.Err(), context.Canceled) {
		t.Error("quit did not cancel the work context")
	}

	next, cmd = m.Update(WorkDoneMsg{Err: context.Canceled})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected quit command once work stopped")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.ExitCode() != apperrors.ExitErrorCanceled {
		t.Errorf("ExitCode() = %d, want %d", m.ExitCode(), apperrors.ExitErrorCanceled)
	}
}

func TestModelQuitWhenDone(t *testing.T) {
	m := newTestModel(t)
	m = apply(m, WorkDoneMsg{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelScroll(t *testing.T) {
	m := newTestModel(t)
	m = apply(m, tea.WindowSizeMsg{Width: 80, Height: 10})
	for i := 1; i <= 20; i++ {
		m = apply(m, UnitDoneMsg{Record: shell.Record{Index: i, Command: "true"}})
	}
	bottom := m.offset
	if bottom != m.maxOffset() || bottom == 0 {
		t.Fatalf("offset = %d, want bottom %d", bottom, m.maxOffset())
	}

	m = apply(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.offset != bottom-1 {
		t.Errorf("offset after up = %d, want %d", m.offset, bottom-1)
	}
	m = apply(m, tea.KeyMsg{Type: tea.KeyPgUp})
	if want := bottom - 1 - m.listHeight(); m.offset != want {
		t.Errorf("offset after one page up = %d, want %d", m.offset, want)
	}
	for i := 0; i < 10; i++ {
		m = apply(m, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	if m.offset != 0 {
		t.Errorf("offset after page up = %d, want 0", m.offset)
	}
	for i := 0; i < 10; i++ {
		m = apply(m, tea.KeyMsg{Type: tea.KeyPgDown})
	}
	if m.offset != bottom {
		t.Errorf("offset after page down = %d, want %d", m.offset, bottom)
	}
}

func TestSinkWithoutProgram(t *testing.T) {
	s := NewSink()
	h1 := s.Create("a")
	h2 := s.Create("b")
	if h1 == h2 || h1 == 0 {
		t.Errorf("handles = %d, %d", h1, h2)
	}
	// No program bound: these must not block or panic.
	s.Update(h2, "c")
	s.Finish(h2, "d")
	s.Clear()
}

func TestTickCmd(t *testing.T) {
	cmd := tickCmd(time.Millisecond)
	if _, ok := cmd().(TickMsg); !ok {
		t.Error("tickCmd did not produce a TickMsg")
	}
}

func TestFormatRowStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  shell.Record
		want string
	}{
		{"ok", shell.Record{Index: 1, Command: "true"}, ""},
		{"exit", shell.Record{Index: 2, Command: "false", ExitCode: 1, Err: apperrors.CommandError{ExitCode: 1}}, "[exit 1]"},
		{"canceled", shell.Record{Index: 3, Command: "sleep 9", ExitCode: -1,
			Err: apperrors.CommandError{ExitCode: -1, Cause: context.Canceled}}, "[canceled]"},
		{"timed out", shell.Record{Index: 4, Command: "sleep 9", ExitCode: -1,
			Err: apperrors.CommandError{ExitCode: -1, Cause: apperrors.TimeoutError{Operation: "sleep 9"}}}, "[timed out]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatRow(unitRow{record: tt.rec, line: "✔️ 1 s"})
			if tt.want == "" {
				if strings.Contains(got, "]") {
					t.Errorf("formatRow() = %q, want no status", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("formatRow() = %q, want %q", got, tt.want)
			}
		})
	}
}
