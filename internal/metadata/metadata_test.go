package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDump = `{
  "user": {"username": "alice", "display_name": "Alice A"},
  "pieces": [
    {
      "short_id": "abc123",
      "title": "Song One",
      "collaborators": ["bob", "alice"],
      "attachment": "piece.figure",
      "created_at": "2016-04-02T10:00:00Z",
      "tempo": "105.000",
      "custom_field": {"nested": true}
    },
    {"short_id": "def456", "title": ""}
  ]
}`

func TestParsePlainJSON(t *testing.T) {
	export, err := Parse([]byte(sampleDump))
	if err != nil {
		t.Fatal(err)
	}
	if len(export.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(export.Pieces))
	}
	piece := export.Pieces[0]
	if piece.ShortID != "abc123" || piece.Title != "Song One" {
		t.Fatalf("unexpected piece: %+v", piece)
	}
	if piece.Attachment != "piece.figure" {
		t.Fatalf("attachment not parsed: %q", piece.Attachment)
	}
	if piece.Tempo.String() != "105.000" {
		t.Fatalf("tempo not parsed: %q", piece.Tempo)
	}
	if export.DefaultUsername() != "alice" {
		t.Fatalf("unexpected default username: %q", export.DefaultUsername())
	}
}

func TestParseLegacyWrapper(t *testing.T) {
	wrapped := "alltihop=" + sampleDump + "\n;"
	export, err := Parse([]byte(wrapped))
	if err != nil {
		t.Fatal(err)
	}
	if len(export.Pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(export.Pieces))
	}
}

func TestParsePreservesRawPieceJSON(t *testing.T) {
	export, err := Parse([]byte(sampleDump))
	if err != nil {
		t.Fatal(err)
	}
	raw := string(export.Pieces[0].Raw)
	if !strings.Contains(raw, "custom_field") {
		t.Fatalf("raw piece JSON should carry uninterpreted fields: %q", raw)
	}
}

func TestParseNumericTempo(t *testing.T) {
	export, err := Parse([]byte(`{"user": {}, "pieces": [{"short_id": "x", "tempo": 120.5}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if export.Pieces[0].Tempo.String() != "120.5" {
		t.Fatalf("numeric tempo not kept textually: %q", export.Pieces[0].Tempo)
	}
}

func TestParseMissingPiecesIsError(t *testing.T) {
	if _, err := Parse([]byte(`{"user": {"username": "alice"}}`)); err == nil {
		t.Fatal("expected error for missing pieces")
	}
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDefaultUsernameFallbacks(t *testing.T) {
	export := &Export{User: User{DisplayName: "Alice A"}}
	if got := export.DefaultUsername(); got != "Alice A" {
		t.Fatalf("expected display name fallback, got %q", got)
	}
	export = &Export{}
	if got := export.DefaultUsername(); got != "unknown" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := (Piece{Title: "  "}).DisplayTitle(); got != "untitled" {
		t.Fatalf("got %q", got)
	}
	if got := (Piece{Title: "Song"}).DisplayTitle(); got != "Song" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alltihop.json")
	if err := os.WriteFile(path, []byte("alltihop="+sampleDump+";"), 0o644); err != nil {
		t.Fatal(err)
	}
	export, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if export.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", export.User)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
