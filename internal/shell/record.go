package shell

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/agbru/autotime/internal/errors"
	"github.com/agbru/autotime/internal/metrics"
)

// Record is the outcome of one unit of work.
type Record struct {
	Index    int
	Command  string
	Start    time.Time
	End      time.Time
	Elapsed  time.Duration
	ExitCode int
	Err      error
	// HookErr holds callback failures from the lifecycle events. They never
	// change the unit's own outcome.
	HookErr error
}

// OK reports whether the unit succeeded.
func (r Record) OK() bool { return r.Err == nil }

// Status classifies the outcome with the metrics status labels.
func (r Record) Status() string {
	switch {
	case r.Err == nil:
		return metrics.StatusOK
	case apperrors.IsContextError(r.Err):
		if errors.Is(r.Err, context.DeadlineExceeded) {
			return metrics.StatusTimeout
		}
		return metrics.StatusCanceled
	default:
		return metrics.StatusFailed
	}
}

// ExitStatus maps the record to a process exit code.
func (r Record) ExitStatus() int {
	return apperrors.ExitCodeFor(r.Err)
}

// history is a fixed-capacity ring of records, oldest first.
type history struct {
	limit   int
	records []Record
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &history{limit: limit, records: make([]Record, 0, limit)}
}

func (h *history) add(r Record) {
	if len(h.records) == h.limit {
		copy(h.records, h.records[1:])
		h.records = h.records[:len(h.records)-1]
	}
	h.records = append(h.records, r)
}

func (h *history) snapshot() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}
