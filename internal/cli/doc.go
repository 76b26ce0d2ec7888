// Package cli is the interactive front end: the REPL that runs each input
// line as a timed unit of work, its magic commands, and the shell completion
// generator.
//
// Functions named Display* write to an io.Writer; Format* functions return
// strings without performing I/O.
package cli
