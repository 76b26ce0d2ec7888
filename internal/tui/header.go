package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/autotime/internal/format"
)

// HeaderModel renders the top bar: title, version and session elapsed time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	units     format.Units
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string, units format.Units) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		units:     units,
	}
}

// SetDone freezes the elapsed time.
func (h *HeaderModel) SetDone() {
	if h.endTime.IsZero() {
		h.endTime = time.Now()
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the session duration so far.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "autotime"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	left := titleStyle.Render(titleText) +
		versionStyle.Render(" | ") +
		elapsedStyle.Render(fmt.Sprintf("Session: %s", format.FormatDuration(h.Elapsed(), h.units)))

	gap := max(h.width-2-lipgloss.Width(left), 0)
	return headerStyle.Width(h.width).Render(left + spaces(gap))
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
