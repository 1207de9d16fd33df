package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// legacyPrefix wraps older exports: the dump is a JavaScript assignment
// rather than bare JSON.
const legacyPrefix = "alltihop="

// User identifies the archive owner in the export dump.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Piece is one collaborative work in the export. Raw preserves the complete
// original JSON object so sidecar files and archival tags can carry fields
// this tool never interprets.
type Piece struct {
	ShortID       string     `json:"short_id"`
	Title         string     `json:"title"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	Description   string     `json:"description"`
	Collaborators []string   `json:"collaborators"`
	Attachment    string     `json:"attachment"`
	CreatedAt     string     `json:"created_at"`
	Tempo         FlexString `json:"tempo"`

	Raw json.RawMessage `json:"-"`
}

// DisplayTitle returns the piece title, defaulting untitled works.
func (p Piece) DisplayTitle() string {
	if title := strings.TrimSpace(p.Title); title != "" {
		return title
	}
	return "untitled"
}

// Export is the parsed metadata dump.
type Export struct {
	Pieces []Piece
	User   User
}

// DefaultUsername resolves the name used in generated filenames when no
// override is given: the export user's username, then display name, then
// "unknown".
func (e *Export) DefaultUsername() string {
	if name := strings.TrimSpace(e.User.Username); name != "" {
		return name
	}
	if name := strings.TrimSpace(e.User.DisplayName); name != "" {
		return name
	}
	return "unknown"
}

// FlexString accepts both JSON strings and numbers, keeping the textual form.
// The export stores tempo sometimes as "105.000" and sometimes as a number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string { return string(f) }

// Load reads and parses the export metadata dump at path. The legacy
// `alltihop=` assignment prefix and a trailing semicolon are stripped before
// parsing.
func Load(path string) (*Export, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a (possibly wrapped) export dump.
func Parse(raw []byte) (*Export, error) {
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, legacyPrefix)
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")

	var envelope struct {
		Pieces []json.RawMessage `json:"pieces"`
		User   User              `json:"user"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if envelope.Pieces == nil {
		return nil, fmt.Errorf("parse metadata: missing pieces list")
	}

	export := &Export{
		Pieces: make([]Piece, 0, len(envelope.Pieces)),
		User:   envelope.User,
	}
	for i, rawPiece := range envelope.Pieces {
		var piece Piece
		if err := json.Unmarshal(rawPiece, &piece); err != nil {
			return nil, fmt.Errorf("parse metadata: piece %d: %w", i, err)
		}
		piece.Raw = rawPiece
		export.Pieces = append(export.Pieces, piece)
	}
	return export, nil
}
