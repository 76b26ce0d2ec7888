// Package logging provides the structured Logger used across autotime,
// backed by zerolog. Components depend on the interface so tests can
// substitute a capturing or silent logger.
package logging
