// Package timer implements the polling timer that keeps a display sink
// showing the elapsed time of the unit of work in progress.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/autotime/internal/display"
	"github.com/agbru/autotime/internal/format"
	"github.com/agbru/autotime/internal/logging"
)

// DefaultInterval is the refresh cadence of the in-progress text.
const DefaultInterval = 110 * time.Millisecond

// Display markers.
const (
	RunningMarker = "⌛"
	DoneMarker    = "✔️"
)

var (
	// ErrTimerRunning is returned by Start when an interval is already open.
	ErrTimerRunning = errors.New("timer already running")
	// ErrTimerIdle is returned by Stop when no interval is open.
	ErrTimerIdle = errors.New("timer not running")
)

// Result describes one completed interval.
type Result struct {
	Start   time.Time
	End     time.Time
	Elapsed time.Duration
	// Text is the completed line pushed to the sink.
	Text string
}

// Option configures a Timer.
type Option func(*Timer)

// WithInterval sets the refresh cadence. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithUnits sets the unit table used to format elapsed time.
func WithUnits(u format.Units) Option {
	return func(t *Timer) { t.units = u }
}

// WithLayout sets the wall-clock timestamp layout.
func WithLayout(layout string) Option {
	return func(t *Timer) {
		if layout != "" {
			t.layout = layout
		}
	}
}

// WithClock replaces time.Now. The clock must carry monotonic readings for
// elapsed times to ignore wall-clock adjustments.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l logging.Logger) Option {
	return func(t *Timer) { t.logger = l }
}

// Timer shows a live elapsed time on a sink between Start and Stop. One
// Timer is reused for every unit of work; at most one refresh goroutine is
// alive at a time.
type Timer struct {
	sink     display.Sink
	interval time.Duration
	layout   string
	now      func() time.Time
	logger   logging.Logger

	unitsMu sync.RWMutex
	units   format.Units

	// mu serializes Start and Stop.
	mu       sync.Mutex
	running  atomic.Bool
	handle   display.Handle
	start    time.Time
	startStr string
	stop     chan struct{}
	worker   *errgroup.Group
}

// New returns an idle Timer rendering into sink.
func New(sink display.Sink, opts ...Option) *Timer {
	t := &Timer{
		sink:     sink,
		interval: DefaultInterval,
		layout:   format.TimestampLayout,
		now:      time.Now,
		logger:   logging.Nop(),
		units:    format.DefaultUnits(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Running reports whether an interval is open.
func (t *Timer) Running() bool {
	return t.running.Load()
}

// Interval returns the refresh cadence.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Units returns a copy of the unit table in use.
func (t *Timer) Units() format.Units {
	t.unitsMu.RLock()
	defer t.unitsMu.RUnlock()
	return t.units
}

// SetUnits replaces the unit table. A running interval picks it up on its
// next refresh.
func (t *Timer) SetUnits(u format.Units) {
	t.unitsMu.Lock()
	t.units = u
	t.unitsMu.Unlock()
}

// Start opens an interval: it renders the first in-progress text and starts
// refreshing it every interval until Stop.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running.Load() {
		return ErrTimerRunning
	}

	t.start = t.now()
	t.startStr = format.FormatTimestamp(t.start, t.layout)
	t.handle = t.sink.Create(t.progressText(0))
	t.stop = make(chan struct{})
	t.running.Store(true)

	g := new(errgroup.Group)
	handle, start, stop := t.handle, t.start, t.stop
	g.Go(func() error {
		t.loop(handle, start, stop)
		return nil
	})
	t.worker = g

	t.logger.Debug("timer started", logging.String("start", t.startStr))
	return nil
}

// Stop closes the open interval, waits for the refresh goroutine to exit and
// renders the completed text. No refresh reaches the sink after Stop returns.
func (t *Timer) Stop() (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running.Load() {
		return Result{}, ErrTimerIdle
	}

	end := t.now()
	elapsed := end.Sub(t.start)
	if elapsed < 0 {
		elapsed = 0
	}

	t.running.Store(false)
	close(t.stop)
	_ = t.worker.Wait()
	t.worker = nil

	endStr := format.FormatTimestamp(end, t.layout)
	text := fmt.Sprintf("%s %s (%s/%s)", DoneMarker, format.FormatDuration(elapsed, t.Units()), t.startStr, endStr)
	display.Finish(t.sink, t.handle, text)

	t.logger.Debug("timer stopped",
		logging.String("start", t.startStr),
		logging.String("end", endStr),
		logging.Duration("elapsed", elapsed))

	return Result{Start: t.start, End: end, Elapsed: elapsed, Text: text}, nil
}

// Elapsed returns the time since Start, or zero when idle.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running.Load() {
		return 0
	}
	return t.now().Sub(t.start)
}

// Clear asks the sink to remove the most recent block.
func (t *Timer) Clear() {
	t.sink.Clear()
}

func (t *Timer) loop(h display.Handle, start time.Time, stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for t.running.Load() {
		t.sink.Update(h, t.progressText(t.now().Sub(start)))
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (t *Timer) progressText(elapsed time.Duration) string {
	return fmt.Sprintf("%s %s (%s)", RunningMarker, format.FormatDuration(elapsed, t.Units()), t.startStr)
}
