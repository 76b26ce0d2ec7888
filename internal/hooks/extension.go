package hooks

import (
	"context"
	"errors"
	"sync"

	"github.com/agbru/autotime/internal/logging"
	"github.com/agbru/autotime/internal/timer"
)

// ExtensionName is the name the timing extension registers its callbacks under.
const ExtensionName = "autotime"

// ErrAlreadyLoaded and ErrNotLoaded report extension lifecycle misuse.
var (
	ErrAlreadyLoaded = errors.New("extension already loaded")
	ErrNotLoaded     = errors.New("extension not loaded")
)

// Extension attaches a Timer to the lifecycle events: the timer starts on
// pre_run_cell and stops on post_run_cell.
type Extension struct {
	timer  *timer.Timer
	logger logging.Logger
	onStop func(timer.Result)

	mu     sync.Mutex
	loaded bool
}

// NewExtension returns an unloaded extension driving t. onStop, when non-nil,
// receives every completed interval.
func NewExtension(t *timer.Timer, logger logging.Logger, onStop func(timer.Result)) *Extension {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extension{timer: t, logger: logger, onStop: onStop}
}

// Loaded reports whether the callbacks are registered.
func (x *Extension) Loaded() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.loaded
}

// Attach registers the start/stop callbacks without starting the timer.
// Use it when no unit of work is in progress.
func (x *Extension) Attach(ev *Events) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.attachLocked(ev)
}

// Load starts the timer for the unit of work in progress and registers the
// start/stop callbacks, so the loading unit itself gets a completed line.
func (x *Extension) Load(ctx context.Context, ev *Events) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.loaded {
		return ErrAlreadyLoaded
	}
	if err := x.start(ctx); err != nil {
		return err
	}
	return x.attachLocked(ev)
}

// Unload stops the timer, clears its display and unregisters the callbacks.
func (x *Extension) Unload(ctx context.Context, ev *Events) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.loaded {
		return ErrNotLoaded
	}
	if err := x.stop(ctx); err != nil {
		return err
	}
	x.timer.Clear()
	err := errors.Join(
		ev.Unregister(PreRunCell, ExtensionName),
		ev.Unregister(PostRunCell, ExtensionName),
	)
	x.loaded = false
	x.logger.Debug("extension unloaded")
	return err
}

func (x *Extension) attachLocked(ev *Events) error {
	if x.loaded {
		return ErrAlreadyLoaded
	}
	if err := ev.Register(PreRunCell, ExtensionName, x.start); err != nil {
		return err
	}
	if err := ev.Register(PostRunCell, ExtensionName, x.stop); err != nil {
		_ = ev.Unregister(PreRunCell, ExtensionName)
		return err
	}
	x.loaded = true
	x.logger.Debug("extension attached")
	return nil
}

// start ignores ErrTimerRunning so an interval opened by Load spans the
// rest of the loading unit.
func (x *Extension) start(context.Context) error {
	if err := x.timer.Start(); err != nil && !errors.Is(err, timer.ErrTimerRunning) {
		return err
	}
	return nil
}

// stop ignores ErrTimerIdle so a post event after Unload is harmless.
func (x *Extension) stop(context.Context) error {
	res, err := x.timer.Stop()
	if errors.Is(err, timer.ErrTimerIdle) {
		return nil
	}
	if err != nil {
		return err
	}
	if x.onStop != nil {
		x.onStop(res)
	}
	return nil
}
