package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// SpinnerRefreshRate is the animation interval of the spinner glyph.
const SpinnerRefreshRate = 100 * time.Millisecond

// Spinner abstracts the terminal spinner so SpinnerSink can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation and erases it.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, spinner.WithWriter(out))
	return &realSpinner{s}
}

// SpinnerSink shows the live text next to an animated spinner and prints the
// final text once the spinner stops.
type SpinnerSink struct {
	mu      sync.Mutex
	out     io.Writer
	next    Handle
	current Handle
	spin    Spinner
}

// NewSpinnerSink returns a SpinnerSink writing to out.
func NewSpinnerSink(out io.Writer) *SpinnerSink {
	return &SpinnerSink{out: out}
}

// Create stops any running spinner and starts a new one showing initial.
func (s *SpinnerSink) Create(initial string) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.next++
	s.current = s.next
	s.spin = newSpinner(s.out)
	s.spin.UpdateSuffix(" " + initial)
	s.spin.Start()
	return s.current
}

// Update changes the spinner suffix when h is current.
func (s *SpinnerSink) Update(h Handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h != s.current || s.spin == nil {
		return
	}
	s.spin.UpdateSuffix(" " + text)
}

// Finish stops the spinner and prints text.
func (s *SpinnerSink) Finish(h Handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h != s.current {
		return
	}
	s.stopLocked()
	fmt.Fprintln(s.out, text)
}

// Clear stops the spinner without printing.
func (s *SpinnerSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *SpinnerSink) stopLocked() {
	if s.spin != nil {
		s.spin.Stop()
		s.spin = nil
	}
	s.current = 0
}
