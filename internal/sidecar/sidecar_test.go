package sidecar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"alltihop/internal/metadata"
)

func TestWritePreservesRawFields(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"short_id":"abc123","title":"Song One","plays":42,"unknown_field":{"nested":true}}`)
	piece := metadata.Piece{ShortID: "abc123", Title: "Song One", Raw: raw}

	path, written, err := Write(dir, "alice_-_Song_One", piece, true)
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Fatal("expected a write")
	}
	if path != filepath.Join(dir, "alice_-_Song_One.meta.json") {
		t.Fatalf("sidecar path: %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["unknown_field"] == nil || decoded["plays"] != float64(42) {
		t.Fatalf("uninterpreted fields lost: %v", decoded)
	}
}

func TestWriteRespectsNoOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.meta.json")
	if err := os.WriteFile(path, []byte(`{"hand":"edited"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	piece := metadata.Piece{ShortID: "abc123", Raw: []byte(`{"short_id":"abc123"}`)}
	got, written, err := Write(dir, "base", piece, false)
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Fatal("existing sidecar must be preserved")
	}
	if got != path {
		t.Fatalf("path: %q", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"hand":"edited"}` {
		t.Fatalf("content replaced: %q", data)
	}
}

func TestWriteFallsBackWithoutRaw(t *testing.T) {
	dir := t.TempDir()
	piece := metadata.Piece{ShortID: "abc123", Title: "Song One"}
	path, written, err := Write(dir, "base", piece, true)
	if err != nil || !written {
		t.Fatalf("written=%v err=%v", written, err)
	}
	var decoded map[string]any
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["short_id"] != "abc123" {
		t.Fatalf("fallback encoding: %v", decoded)
	}
}
