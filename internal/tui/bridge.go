package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/autotime/internal/display"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the timer and work goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program. It is a no-op until a
// program is set, and returns immediately once the program has exited.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// Sink is a display.Sink that forwards the timer text to the dashboard.
type Sink struct {
	ref *programRef

	mu   sync.Mutex
	next display.Handle
}

var (
	_ display.Sink     = (*Sink)(nil)
	_ display.Finisher = (*Sink)(nil)
)

// NewSink returns a Sink not yet bound to a program; Run binds it.
func NewSink() *Sink {
	return &Sink{ref: &programRef{}}
}

// Create starts a new live line.
func (s *Sink) Create(initial string) display.Handle {
	s.mu.Lock()
	s.next++
	h := s.next
	s.mu.Unlock()

	s.ref.Send(LineMsg{Handle: h, Text: initial})
	return h
}

// Update replaces the live line.
func (s *Sink) Update(h display.Handle, text string) {
	s.ref.Send(LineMsg{Handle: h, Text: text})
}

// Finish delivers the completed line.
func (s *Sink) Finish(h display.Handle, text string) {
	s.ref.Send(LineMsg{Handle: h, Text: text, Final: true})
}

// Clear removes the live line.
func (s *Sink) Clear() {
	s.ref.Send(ClearMsg{})
}
