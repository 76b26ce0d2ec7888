package display

import (
	"fmt"
	"io"
	"sync"
)

// PlainSink is for output that is not a terminal: it prints one line per
// block, carrying the final text, and ignores intermediate updates.
type PlainSink struct {
	mu   sync.Mutex
	out  io.Writer
	next Handle
}

// NewPlainSink returns a PlainSink writing to out.
func NewPlainSink(out io.Writer) *PlainSink {
	return &PlainSink{out: out}
}

// Create allocates a handle without printing.
func (s *PlainSink) Create(string) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

// Update is a no-op.
func (s *PlainSink) Update(Handle, string) {}

// Finish prints text on its own line.
func (s *PlainSink) Finish(_ Handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, text)
}

// Clear is a no-op: printed lines stay.
func (s *PlainSink) Clear() {}
