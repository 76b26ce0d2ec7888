//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks

package display

import "io"

// Handle identifies one rendered block on a Sink.
type Handle uint64

// Sink is the rendering target for live and final timer text.
type Sink interface {
	// Create renders a new block with initial content and returns its handle.
	Create(initial string) Handle
	// Update replaces the content of the block identified by h.
	Update(h Handle, text string)
	// Clear removes the most recent block from view, if the sink can.
	Clear()
}

// Finisher is implemented by sinks that render the last update of a block
// differently, for example by ending the terminal line.
type Finisher interface {
	Finish(h Handle, text string)
}

// Interleaver is implemented by sinks that share a terminal with other output.
// Wrap returns a writer whose writes do not tear the live block.
type Interleaver interface {
	Wrap(w io.Writer) io.Writer
}

// Finish delivers the final text of h, using Finisher when s implements it.
func Finish(s Sink, h Handle, text string) {
	if f, ok := s.(Finisher); ok {
		f.Finish(h, text)
		return
	}
	s.Update(h, text)
}

// Wrap returns w wrapped by s when s implements Interleaver, and w otherwise.
func Wrap(s Sink, w io.Writer) io.Writer {
	if i, ok := s.(Interleaver); ok {
		return i.Wrap(w)
	}
	return w
}

// Discard is a Sink that renders nothing.
var Discard Sink = discard{}

type discard struct{}

func (discard) Create(string) Handle  { return 0 }
func (discard) Update(Handle, string) {}
func (discard) Clear()                {}
