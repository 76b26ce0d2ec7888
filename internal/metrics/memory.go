package metrics

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
)

// MemorySnapshot holds a point-in-time reading of the session's own memory.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by the session
	Sys          uint64 // total bytes obtained from OS
	NumGC        uint32 // number of completed GC cycles
	NumGoroutine int    // live goroutines, including the timer's refresh loop
}

// String renders the snapshot for the %stats report.
func (s MemorySnapshot) String() string {
	return fmt.Sprintf("heap %s, sys %s, %d GC cycles, %d goroutines",
		humanize.IBytes(s.HeapAlloc), humanize.IBytes(s.Sys), s.NumGC, s.NumGoroutine)
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
}
