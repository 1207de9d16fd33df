package tagging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeExecutor struct {
	calls   [][]string
	failOn  string
	failErr error
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) (string, error) {
	f.calls = append(f.calls, args)
	if f.failOn != "" {
		for _, arg := range args {
			if arg == f.failOn {
				return "", f.failErr
			}
		}
	}
	return "", nil
}

func TestTagWritesEachFieldSeparately(t *testing.T) {
	exec := &fakeExecutor{}
	tagger, err := New("AtomicParsley", 0, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	result, err := tagger.Tag(context.Background(), "/archive/alice_-_Song.m4a", Request{
		Title:     "Song",
		Artist:    "alice",
		Comment:   "notes",
		CreatedAt: "2016-03-01T10:00:00Z",
		Tempo:     "105.000",
		CoverPath: "/archive/alice_-_Song.cover.jpg",
		PieceJSON: []byte(`{"short_id":"abc123"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	wantFields := []string{"title", "artist", "comment", "year", "bpm", "artwork", RDNSAtomName}
	if len(result.Fields) != len(wantFields) {
		t.Fatalf("expected %d fields, got %+v", len(wantFields), result.Fields)
	}
	for i, field := range result.Fields {
		if field.Field != wantFields[i] {
			t.Fatalf("field order: got %q, want %q", field.Field, wantFields[i])
		}
		if field.Err != nil {
			t.Fatalf("field %s failed: %v", field.Field, field.Err)
		}
	}
	if len(exec.calls) != len(wantFields) {
		t.Fatalf("expected one invocation per field, got %d", len(exec.calls))
	}
	for _, call := range exec.calls {
		if call[0] != "/archive/alice_-_Song.m4a" {
			t.Fatalf("audio path missing from args: %v", call)
		}
		if call[len(call)-1] != "--overWrite" {
			t.Fatalf("in-place overwrite flag missing: %v", call)
		}
	}
	bpmCall := exec.calls[4]
	if bpmCall[1] != "--bpm" || bpmCall[2] != "105" {
		t.Fatalf("tempo should round to integer bpm: %v", bpmCall)
	}
}

func TestTagFieldFailureDoesNotAbortRemainingFields(t *testing.T) {
	exec := &fakeExecutor{failOn: "--artwork", failErr: errors.New("bad image")}
	tagger, err := New("AtomicParsley", 0, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}

	result, err := tagger.Tag(context.Background(), "song.mp4", Request{
		Title:     "Song",
		Artist:    "alice",
		CoverPath: "broken.jpg",
		PieceJSON: []byte(`{}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed() != 1 {
		t.Fatalf("expected one failed field, got %+v", result.Fields)
	}
	last := result.Fields[len(result.Fields)-1]
	if last.Field != RDNSAtomName || last.Err != nil {
		t.Fatalf("fields after the failure must still run: %+v", last)
	}
}

func TestTagSkipsOptionalEmptyFields(t *testing.T) {
	exec := &fakeExecutor{}
	tagger, err := New("AtomicParsley", 0, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	result, err := tagger.Tag(context.Background(), "song.mp4", Request{Title: "Song", Artist: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Fields) != 2 {
		t.Fatalf("only title and artist expected, got %+v", result.Fields)
	}
}

func TestTagRejectsNonMP4Container(t *testing.T) {
	tagger, err := New("AtomicParsley", 0, WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tagger.Tag(context.Background(), "song.wav", Request{Title: "Song"}); err == nil {
		t.Fatal("wav files cannot carry MP4 tags")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New("  ", 0); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRDNSAtomArgs(t *testing.T) {
	exec := &fakeExecutor{}
	tagger, err := New("AtomicParsley", 0, WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tagger.Tag(context.Background(), "song.mp4", Request{
		Title: "Song", Artist: "alice", PieceJSON: []byte(`{"short_id":"abc123"}`),
	}); err != nil {
		t.Fatal(err)
	}
	atomCall := exec.calls[len(exec.calls)-1]
	joined := strings.Join(atomCall, " ")
	if !strings.Contains(joined, "--rDNSatom") ||
		!strings.Contains(joined, "name="+RDNSAtomName) ||
		!strings.Contains(joined, "domain="+RDNSAtomDomain) {
		t.Fatalf("rDNS atom args: %v", atomCall)
	}
}

func TestFindAudioPrefersRenamedForm(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"audio.mp4", "alice_-_Song.m4a"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path, ok := FindAudio(dir, "alice_-_Song")
	if !ok || filepath.Base(path) != "alice_-_Song.m4a" {
		t.Fatalf("got %q ok=%v", path, ok)
	}
}

func TestFindAudioLoneMP4Fallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "something.m4a"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, ok := FindAudio(dir, "alice_-_Song")
	if !ok || filepath.Base(path) != "something.m4a" {
		t.Fatalf("got %q ok=%v", path, ok)
	}
}

func TestFindCoverPrefersRenamedForm(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cover.jpg", "alice_-_Song.cover.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path, ok := FindCover(dir, "alice_-_Song")
	if !ok || filepath.Base(path) != "alice_-_Song.cover.png" {
		t.Fatalf("got %q ok=%v", path, ok)
	}
}
