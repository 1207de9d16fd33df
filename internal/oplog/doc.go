// Package oplog manages the append-only rename log: newline-delimited JSON,
// one record per applied operation, flushed after every write. The log is the
// sole input to undo; directory contents are never trusted for intent.
package oplog
