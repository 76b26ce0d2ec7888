package display

import (
	"sync"
	"time"
)

// Op names the sink call that produced an Event.
type Op string

// Recorded operations.
const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpFinish Op = "finish"
	OpClear  Op = "clear"
)

// Event is one call recorded by a Recorder.
type Event struct {
	Op     Op
	Handle Handle
	Text   string
	At     time.Time
}

// Recorder is an in-memory Sink that keeps every call. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	next   Handle
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(op Op, h Handle, text string) {
	r.events = append(r.events, Event{Op: op, Handle: h, Text: text, At: time.Now()})
}

// Create records the block and returns a fresh handle.
func (r *Recorder) Create(initial string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.add(OpCreate, r.next, initial)
	return r.next
}

// Update records the new text.
func (r *Recorder) Update(h Handle, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(OpUpdate, h, text)
}

// Finish records the final text.
func (r *Recorder) Finish(h Handle, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(OpFinish, h, text)
}

// Clear records a clear.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(OpClear, 0, "")
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// Last returns the most recent event of op and whether there was one.
func (r *Recorder) Last(op Op) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Op == op {
			return r.events[i], true
		}
	}
	return Event{}, false
}
