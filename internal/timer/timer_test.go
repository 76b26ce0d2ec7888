package timer

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.uber.org/goleak"

	"github.com/agbru/autotime/internal/display"
	"github.com/agbru/autotime/internal/display/mocks"
	"github.com/agbru/autotime/internal/format"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var completedPattern = regexp.MustCompile(`^✔️ (\S+ \S+(?: \S+ \S+)*) \((\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d)/(\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d)\)$`)

func TestTimer_StartStopCompletedMessage(t *testing.T) {
	t.Parallel()
	rec := display.NewRecorder()
	tm := New(rec, WithInterval(5*time.Millisecond))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err := tm.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if res.Elapsed < 0 {
		t.Errorf("elapsed should be non-negative, got %v", res.Elapsed)
	}
	if res.End.Before(res.Start) {
		t.Errorf("end %v before start %v", res.End, res.Start)
	}
	m := completedPattern.FindStringSubmatch(res.Text)
	if m == nil {
		t.Fatalf("completed text %q does not match %s", res.Text, completedPattern)
	}
	if m[2] != format.FormatTimestamp(res.Start, "") || m[3] != format.FormatTimestamp(res.End, "") {
		t.Errorf("timestamps in %q do not match result %v/%v", res.Text, res.Start, res.End)
	}

	last, ok := rec.Last(display.OpFinish)
	if !ok || last.Text != res.Text {
		t.Errorf("sink final text = %q, want %q", last.Text, res.Text)
	}
	if tm.Running() {
		t.Error("timer should be idle after Stop")
	}
}

func TestTimer_InProgressText(t *testing.T) {
	t.Parallel()
	rec := display.NewRecorder()
	tm := New(rec, WithInterval(5*time.Millisecond))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := tm.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	created, ok := rec.Last(display.OpCreate)
	if !ok {
		t.Fatal("Start should create a display block")
	}
	if !strings.HasPrefix(created.Text, RunningMarker+" ") {
		t.Errorf("initial text %q lacks running marker", created.Text)
	}
	for _, e := range rec.Events() {
		if e.Op == display.OpUpdate && !strings.HasPrefix(e.Text, RunningMarker+" ") {
			t.Errorf("in-progress update %q lacks running marker", e.Text)
		}
		if e.Handle != created.Handle && e.Op != display.OpClear {
			t.Errorf("event %+v targets another handle", e)
		}
	}
}

func TestTimer_UpdateCadence(t *testing.T) {
	t.Parallel()
	rec := display.NewRecorder()
	interval := 10 * time.Millisecond
	tm := New(rec, WithInterval(interval))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(105 * time.Millisecond)
	if _, err := tm.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// About ten refreshes; leave room for a loaded scheduler.
	if n := rec.Count(display.OpUpdate); n < 4 || n > 13 {
		t.Errorf("got %d updates over ~10 intervals", n)
	}
}

func TestTimer_NoUpdateAfterStop(t *testing.T) {
	t.Parallel()
	rec := display.NewRecorder()
	tm := New(rec, WithInterval(time.Millisecond))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := tm.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	before := len(rec.Events())
	time.Sleep(20 * time.Millisecond)

	events := rec.Events()
	if len(events) != before {
		t.Fatalf("sink received %d events after Stop returned", len(events)-before)
	}
	if events[len(events)-1].Op != display.OpFinish {
		t.Errorf("last event should be the completed text, got %+v", events[len(events)-1])
	}
}

func TestTimer_Misuse(t *testing.T) {
	t.Parallel()
	rec := display.NewRecorder()
	tm := New(rec)

	if _, err := tm.Stop(); !errors.Is(err, ErrTimerIdle) {
		t.Errorf("Stop on idle timer: err = %v, want ErrTimerIdle", err)
	}
	if len(rec.Events()) != 0 {
		t.Error("Stop on idle timer should not touch the sink")
	}

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	creates := rec.Count(display.OpCreate)
	if err := tm.Start(); !errors.Is(err, ErrTimerRunning) {
		t.Errorf("second Start: err = %v, want ErrTimerRunning", err)
	}
	if rec.Count(display.OpCreate) != creates {
		t.Error("rejected Start should not create a block")
	}
	if _, err := tm.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestTimer_Reuse(t *testing.T) {
	t.Parallel()
	rec := display.NewRecorder()
	tm := New(rec, WithInterval(2*time.Millisecond))

	for i := 0; i < 5; i++ {
		if err := tm.Start(); err != nil {
			t.Fatalf("cycle %d Start: %v", i, err)
		}
		if _, err := tm.Stop(); err != nil {
			t.Fatalf("cycle %d Stop: %v", i, err)
		}
	}
	if rec.Count(display.OpCreate) != 5 || rec.Count(display.OpFinish) != 5 {
		t.Errorf("expected 5 blocks, got creates=%d finishes=%d",
			rec.Count(display.OpCreate), rec.Count(display.OpFinish))
	}
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestTimer_FormatsWithClockAndUnits(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local), step: 3661 * time.Second}
	units := format.DefaultUnits()
	if err := units.Set(map[string]any{format.UnitHour: "hr"}); err != nil {
		t.Fatal(err)
	}
	rec := display.NewRecorder()
	// A long interval keeps the refresh goroutine from reading the clock
	// more than once.
	tm := New(rec, WithClock(clock.Now), WithUnits(units), WithInterval(time.Hour))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	created, _ := rec.Last(display.OpCreate)
	if created.Text != "⌛ 0 ns (2024-01-02T03:04:05)" {
		t.Errorf("initial text = %q", created.Text)
	}

	// Wait for the first refresh so the clock reading order is fixed.
	deadline := time.Now().Add(time.Second)
	for rec.Count(display.OpUpdate) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	res, err := tm.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Readings: start, first refresh, stop. The hour label is the override.
	if want := "✔️ 2 hr 2 min 2 s (2024-01-02T03:04:05/2024-01-02T05:06:07)"; res.Text != want {
		t.Errorf("completed text = %q, want %q", res.Text, want)
	}
}

func TestTimer_SetUnits(t *testing.T) {
	t.Parallel()
	tm := New(display.Discard)
	u := tm.Units()
	if err := u.SetLabel(format.UnitSec, "sec"); err != nil {
		t.Fatal(err)
	}
	tm.SetUnits(u)
	if got := tm.Units().Sec; got != "sec" {
		t.Errorf("Units().Sec = %q", got)
	}
	if tm.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v", tm.Interval())
	}
}

func TestTimer_MockSink(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)

	gomock.InOrder(
		sink.EXPECT().Create(gomock.Any()).Return(display.Handle(42)),
		sink.EXPECT().Update(display.Handle(42), &prefixMatcher{RunningMarker}).MinTimes(1),
		sink.EXPECT().Update(display.Handle(42), &prefixMatcher{DoneMarker}),
	)
	sink.EXPECT().Clear().Times(1)

	tm := New(sink, WithInterval(time.Millisecond))
	if err := tm.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := tm.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	tm.Clear()
}

func TestTimer_ElapsedWhileRunning(t *testing.T) {
	t.Parallel()
	tm := New(display.Discard, WithInterval(time.Millisecond))
	if tm.Elapsed() != 0 {
		t.Error("idle timer should report zero elapsed")
	}
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if tm.Elapsed() <= 0 {
		t.Error("running timer should report positive elapsed")
	}
	if _, err := tm.Stop(); err != nil {
		t.Fatal(err)
	}
}

type prefixMatcher struct{ prefix string }

func (m *prefixMatcher) Matches(x interface{}) bool {
	s, ok := x.(string)
	return ok && strings.HasPrefix(s, m.prefix)
}

func (m *prefixMatcher) String() string { return "has prefix " + m.prefix }
