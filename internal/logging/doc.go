// Package logging wraps log/slog with the attribute helpers, console and JSON
// handlers, and context-derived fields used throughout the tool.
//
// Components obtain loggers via NewComponentLogger and enrich them per item
// with WithContext, which injects the run id and current piece from the
// context. Tests use NewNop.
package logging
