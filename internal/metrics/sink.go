package metrics

import (
	"io"

	"github.com/agbru/autotime/internal/display"
)

// InstrumentSink wraps s so every update and final text is counted.
// Finisher and Interleaver behaviour of s is preserved.
func (m *Metrics) InstrumentSink(s display.Sink) display.Sink {
	return &countingSink{inner: s, m: m}
}

type countingSink struct {
	inner display.Sink
	m     *Metrics
}

func (c *countingSink) Create(initial string) display.Handle {
	c.m.SetTimerRunning(true)
	return c.inner.Create(initial)
}

func (c *countingSink) Update(h display.Handle, text string) {
	c.m.DisplayUpdated()
	c.inner.Update(h, text)
}

func (c *countingSink) Finish(h display.Handle, text string) {
	c.m.DisplayUpdated()
	c.m.SetTimerRunning(false)
	display.Finish(c.inner, h, text)
}

func (c *countingSink) Clear() {
	c.inner.Clear()
}

func (c *countingSink) Wrap(w io.Writer) io.Writer {
	return display.Wrap(c.inner, w)
}
