// Package sidecar writes the full piece metadata as an indented JSON file
// next to the renamed audio asset, so the archive stays self-describing even
// when the export dump is lost.
package sidecar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"alltihop/internal/fileutil"
	"alltihop/internal/metadata"
	"alltihop/internal/services"
)

// Suffix is appended to the piece base name to form the sidecar filename.
const Suffix = ".meta.json"

// Write serializes the piece's complete original JSON object to
// <dir>/<base>.meta.json. The raw export object is preserved verbatim
// (re-indented), so fields this tool never interprets survive. When
// overwrite is false an existing sidecar is left alone; the returned bool
// reports whether the file was written.
func Write(dir, base string, piece metadata.Piece, overwrite bool) (string, bool, error) {
	path := filepath.Join(dir, base+Suffix)
	if !overwrite {
		exists, err := fileutil.PathExists(path)
		if err != nil {
			return "", false, services.Wrap(services.ErrTransient, "sidecar", "probe sidecar", fmt.Sprintf("Cannot inspect %s", path), err)
		}
		if exists {
			return path, false, nil
		}
	}

	payload, err := render(piece)
	if err != nil {
		return "", false, services.Wrap(services.ErrValidation, "sidecar", "encode metadata", fmt.Sprintf("Cannot encode metadata for piece %s", piece.ShortID), err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", false, services.Wrap(services.ErrTransient, "sidecar", "write sidecar", fmt.Sprintf("Cannot write %s", path), err)
	}
	return path, true, nil
}

func render(piece metadata.Piece) ([]byte, error) {
	if len(piece.Raw) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, piece.Raw, "", "  "); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
	encoded, err := json.MarshalIndent(piece, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}
