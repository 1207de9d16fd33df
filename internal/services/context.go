package services

import (
	"context"
	"strings"
)

type contextKey string

const (
	runIDKey contextKey = "run_id"
	pieceKey contextKey = "piece"
)

// WithRunID attaches the run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run identifier, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(runIDKey).(string)
	return value, ok && value != ""
}

// WithPiece attaches the piece short id to the context.
func WithPiece(ctx context.Context, shortID string) context.Context {
	shortID = strings.TrimSpace(shortID)
	if shortID == "" {
		return ctx
	}
	return context.WithValue(ctx, pieceKey, shortID)
}

// PieceFromContext extracts the piece short id, if present.
func PieceFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(pieceKey).(string)
	return value, ok && value != ""
}
