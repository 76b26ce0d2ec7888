// Package shell is the session kernel: it executes units of work (shell
// command lines or in-process cells), fires the pre_run_cell and
// post_run_cell lifecycle events around each one, and keeps a bounded
// history of their outcomes.
package shell
