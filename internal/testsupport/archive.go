package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// PieceFixture describes one piece folder plus its metadata entry.
type PieceFixture struct {
	ShortID    string
	Title      string
	Attachment string
	// Files maps filename to content inside the piece folder.
	Files map[string]string
	// Extra is merged into the piece's JSON object in the dump.
	Extra map[string]any
}

// WriteArchive lays out a complete export archive under root: the metadata
// dump (wrapped in the legacy "alltihop=...;" envelope) and one folder per
// piece with its asset files. Returns the dump path.
func WriteArchive(t testing.TB, root, username string, pieces []PieceFixture) string {
	t.Helper()

	piecesDir := filepath.Join(root, "dump", "assets", "pieces")
	entries := make([]map[string]any, 0, len(pieces))
	for _, piece := range pieces {
		dir := filepath.Join(piecesDir, piece.ShortID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create piece dir: %v", err)
		}
		for name, content := range piece.Files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
				t.Fatalf("write asset %s: %v", name, err)
			}
		}

		entry := map[string]any{
			"short_id": piece.ShortID,
			"title":    piece.Title,
		}
		if piece.Attachment != "" {
			entry["attachment"] = piece.Attachment
		}
		for key, value := range piece.Extra {
			entry[key] = value
		}
		entries = append(entries, entry)
	}

	dump := map[string]any{
		"user":   map[string]any{"username": username},
		"pieces": entries,
	}
	encoded, err := json.Marshal(dump)
	if err != nil {
		t.Fatalf("encode dump: %v", err)
	}

	dumpPath := filepath.Join(root, "dump", "alltihop.json")
	if err := os.MkdirAll(filepath.Dir(dumpPath), 0o755); err != nil {
		t.Fatalf("create dump dir: %v", err)
	}
	payload := append([]byte("alltihop="), encoded...)
	payload = append(payload, ';')
	if err := os.WriteFile(dumpPath, payload, 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return dumpPath
}
