package services

import (
	"context"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	got, ok := RunIDFromContext(ctx)
	if !ok || got != "run-123" {
		t.Fatalf("expected run-123, got %q ok=%v", got, ok)
	}
}

func TestPieceRoundTrip(t *testing.T) {
	ctx := WithPiece(context.Background(), "abc123")
	got, ok := PieceFromContext(ctx)
	if !ok || got != "abc123" {
		t.Fatalf("expected abc123, got %q ok=%v", got, ok)
	}
}

func TestBlankValuesIgnored(t *testing.T) {
	ctx := WithRunID(context.Background(), "   ")
	if _, ok := RunIDFromContext(ctx); ok {
		t.Fatal("blank run id should not be stored")
	}
	if _, ok := PieceFromContext(context.Background()); ok {
		t.Fatal("empty context should not report a piece")
	}
}
