// Package display defines the sink the timer renders into and the terminal
// implementations of it.
//
// A Sink hands out a Handle per rendered block and replaces that block's text
// in place on Update. Sinks serialize their own writes; callers do not lock.
// Sinks that can tell a final update apart implement Finisher, and sinks that
// share the terminal with command output implement Interleaver.
package display
