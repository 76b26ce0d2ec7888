// Package tui is the bubbletea dashboard for batch runs: the live timer
// line, the completed units of work and a system usage footer.
package tui
