package display

import (
	"bytes"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	eraseLine = "\r\033[K"
	cursorUp  = "\033[1A"
)

// LineSink renders the current block on a single terminal line and rewrites
// it in place. Creating a new block ends the previous one's line.
type LineSink struct {
	mu    sync.Mutex
	out   io.Writer
	style lipgloss.Style

	next    Handle
	current Handle
	text    string
	// live is true while the current block is drawn on the cursor's line.
	live bool
	// midLine is true when interleaved output left the cursor mid-line.
	midLine bool
	// finishedAbove is true when the line right above the cursor is the
	// last finished block and nothing was written after it.
	finishedAbove bool
}

// NewLineSink returns a LineSink writing to out, rendering text with style.
func NewLineSink(out io.Writer, style lipgloss.Style) *LineSink {
	return &LineSink{out: out, style: style}
}

// Create ends any live block and draws initial as a new one.
func (s *LineSink) Create(initial string) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live {
		io.WriteString(s.out, "\n")
	}
	s.next++
	s.current = s.next
	s.finishedAbove = false
	s.draw(initial)
	return s.current
}

// Update redraws the block if h is still the current one.
func (s *LineSink) Update(h Handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h != s.current || h == 0 {
		return
	}
	s.draw(text)
}

// Finish draws the final text of h and ends its line.
func (s *LineSink) Finish(h Handle, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h != s.current || h == 0 {
		return
	}
	s.draw(text)
	io.WriteString(s.out, "\n")
	s.live = false
	s.current = 0
	s.finishedAbove = true
}

// Clear erases the live block, or the block finished on the previous line
// when nothing was printed after it.
func (s *LineSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.live:
		io.WriteString(s.out, eraseLine)
		s.live = false
		s.current = 0
	case s.finishedAbove:
		io.WriteString(s.out, cursorUp+eraseLine)
		s.finishedAbove = false
	}
}

// Wrap returns a writer that lifts the live line out of the way of w's output
// and redraws it below once the output ends a line.
func (s *LineSink) Wrap(w io.Writer) io.Writer {
	return &lineWriter{sink: s, w: w}
}

func (s *LineSink) draw(text string) {
	if s.midLine {
		io.WriteString(s.out, "\n")
		s.midLine = false
	}
	s.text = text
	io.WriteString(s.out, eraseLine+s.style.Render(text))
	s.live = true
}

type lineWriter struct {
	sink *LineSink
	w    io.Writer
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	s := lw.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}
	if s.live {
		io.WriteString(s.out, eraseLine)
	}
	n, err := lw.w.Write(p)
	s.finishedAbove = false
	if s.live {
		if bytes.HasSuffix(p, []byte("\n")) {
			io.WriteString(s.out, s.style.Render(s.text))
		} else {
			s.midLine = true
		}
	}
	return n, err
}
