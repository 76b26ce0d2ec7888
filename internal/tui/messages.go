package tui

import (
	"time"

	"github.com/agbru/autotime/internal/display"
	"github.com/agbru/autotime/internal/shell"
	"github.com/agbru/autotime/internal/sysmon"
)

// LineMsg carries timer text for a block. Final marks the completed line.
type LineMsg struct {
	Handle display.Handle
	Text   string
	Final  bool
}

// ClearMsg removes the live timer line.
type ClearMsg struct{}

// UnitStartedMsg is sent before a unit of work runs.
type UnitStartedMsg struct {
	Command string
}

// UnitDoneMsg is sent with the record of a finished unit.
type UnitDoneMsg struct {
	Record shell.Record
}

// WorkDoneMsg is sent once every unit has run.
type WorkDoneMsg struct {
	Err error
}

// TickMsg drives the periodic system sampling.
type TickMsg time.Time

// SysStatsMsg carries a system sample.
type SysStatsMsg struct {
	Stats sysmon.Stats
}
