// Package ui holds the terminal palette shared by the REPL, the live timer
// line and the dashboard. The active palette is process-wide and honours
// NO_COLOR.
package ui
