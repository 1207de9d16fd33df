// Package rename turns archive metadata into filesystem rename plans and
// applies, logs, and reverses them. Planning never writes; applying moves one
// asset at a time and appends a log record after each successful move, so an
// interrupted run leaves a log that exactly matches the disk state.
package rename
