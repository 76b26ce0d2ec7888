// Package hooks provides the lifecycle event registry a session fires around
// each unit of work, and the extension that attaches the timer to it.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/logging"
)

// Event names a lifecycle point.
type Event string

// Lifecycle events fired by a session.
const (
	// PreRunCell fires before each unit of work.
	PreRunCell Event = "pre_run_cell"
	// PostRunCell fires after each unit of work, whether it failed or not.
	PostRunCell Event = "post_run_cell"
)

// Callback is invoked when its event fires.
type Callback func(ctx context.Context) error

type registration struct {
	name string
	fn   Callback
}

// Events is a registry of named callbacks per event. Callbacks run in
// registration order. It is safe for concurrent use.
type Events struct {
	mu        sync.RWMutex
	callbacks map[Event][]registration
	logger    logging.Logger
}

// NewEvents returns an empty registry.
func NewEvents(logger logging.Logger) *Events {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Events{
		callbacks: make(map[Event][]registration),
		logger:    logger,
	}
}

func validEvent(ev Event) bool {
	return ev == PreRunCell || ev == PostRunCell
}

// Register adds cb under name for ev. Names are unique per event.
func (e *Events) Register(ev Event, name string, cb Callback) error {
	if !validEvent(ev) {
		return apperrors.ValidationError{Field: string(ev), Message: "unknown event"}
	}
	if cb == nil {
		return apperrors.ValidationError{Field: name, Message: "nil callback"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range e.callbacks[ev] {
		if r.name == name {
			return apperrors.ValidationError{Field: name, Message: fmt.Sprintf("already registered for %s", ev)}
		}
	}
	e.callbacks[ev] = append(e.callbacks[ev], registration{name: name, fn: cb})
	e.logger.Debug("callback registered", logging.String("event", string(ev)), logging.String("name", name))
	return nil
}

// Unregister removes the callback registered under name for ev.
func (e *Events) Unregister(ev Event, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	regs := e.callbacks[ev]
	for i, r := range regs {
		if r.name == name {
			e.callbacks[ev] = append(regs[:i:i], regs[i+1:]...)
			e.logger.Debug("callback unregistered", logging.String("event", string(ev)), logging.String("name", name))
			return nil
		}
	}
	return apperrors.ValidationError{Field: name, Message: fmt.Sprintf("not registered for %s", ev)}
}

// Registered returns the callback names for ev in firing order.
func (e *Events) Registered(ev Event) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.callbacks[ev]))
	for _, r := range e.callbacks[ev] {
		names = append(names, r.name)
	}
	return names
}

// Trigger runs every callback registered for ev. A failing callback does not
// prevent the others from running; their errors are joined.
func (e *Events) Trigger(ctx context.Context, ev Event) error {
	e.mu.RLock()
	regs := make([]registration, len(e.callbacks[ev]))
	copy(regs, e.callbacks[ev])
	e.mu.RUnlock()

	var errs []error
	for _, r := range regs {
		if err := r.fn(ctx); err != nil {
			e.logger.Warn("callback failed",
				logging.String("event", string(ev)),
				logging.String("name", r.name),
				logging.Err(err))
			errs = append(errs, fmt.Errorf("%s/%s: %w", ev, r.name, err))
		}
	}
	return errors.Join(errs...)
}
