package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureLinkCreatesHardlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "renamed.mp4")
	legacy := filepath.Join(dir, "audio.mp4")
	if err := os.WriteFile(target, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err := EnsureLink(legacy, target)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeHardlink {
		t.Fatalf("expected hardlink outcome, got %s", outcome)
	}
	if !SameFile(legacy, target) {
		t.Fatal("legacy path should share the target inode")
	}
}

func TestEnsureLinkRefusesOccupiedPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "renamed.mp4")
	legacy := filepath.Join(dir, "audio.mp4")
	for _, path := range []string{target, legacy} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	outcome, err := EnsureLink(legacy, target)
	if err == nil || !IsExist(err) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if outcome != OutcomeNone {
		t.Fatalf("expected none outcome, got %s", outcome)
	}
}

func TestEnsureCopyCreatesIndependentFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "renamed.mp4")
	legacy := filepath.Join(dir, "audio.mp4")
	if err := os.WriteFile(target, []byte("audio bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err := EnsureCopy(legacy, target)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeCopy {
		t.Fatalf("expected copy outcome, got %s", outcome)
	}
	if SameFile(legacy, target) {
		t.Fatal("copy must not share the target inode")
	}
	if equal, err := SameContent(legacy, target); err != nil || !equal {
		t.Fatalf("copy content mismatch: equal=%v err=%v", equal, err)
	}
}

func TestEnsureCopyRefusesOccupiedPath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "renamed.mp4")
	legacy := filepath.Join(dir, "audio.mp4")
	for _, path := range []string{target, legacy} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := EnsureCopy(legacy, target); err == nil || !IsExist(err) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
}
