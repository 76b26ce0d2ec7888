package sysmon

import (
	"context"
	"strings"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample(context.Background())
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestSample_MemoryNonZero(t *testing.T) {
	s := Sample(context.Background())
	if s.MemPercent == 0 || s.MemTotal == 0 {
		t.Error("expected non-zero memory readings on a running system")
	}
	if s.MemUsed > s.MemTotal {
		t.Errorf("used %d exceeds total %d", s.MemUsed, s.MemTotal)
	}
}

func TestStats_String(t *testing.T) {
	s := Stats{CPUPercent: 12.34, MemPercent: 50, MemUsed: 1 << 30, MemTotal: 2 << 30}
	got := s.String()
	for _, want := range []string{"cpu 12.3%", "mem 50.0%", "1.0 GiB", "2.0 GiB"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
