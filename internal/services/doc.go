// Package services provides the shared error taxonomy and context plumbing
// used across the rename, undo, and tagging stages.
//
// Errors are tagged with sentinel markers (validation, configuration,
// not-found, external tool, transient) so the CLI can classify failures into
// exit codes without string matching. Context helpers carry the run id and
// the piece currently being processed for structured logging.
package services
