package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies which asset of a piece an operation touches.
type Kind string

const (
	KindAudio      Kind = "audio"
	KindCover      Kind = "cover"
	KindAttachment Kind = "attachment"
)

// LegacyMode selects the artifact left behind at the original path after a
// move. Link and copy are mutually exclusive per run.
type LegacyMode string

const (
	LegacyNone LegacyMode = "none"
	LegacyLink LegacyMode = "link"
	LegacyCopy LegacyMode = "copy"
)

// ParseLegacyMode validates a mode string from config or CLI flags.
func ParseLegacyMode(value string) (LegacyMode, error) {
	switch mode := LegacyMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case LegacyNone, LegacyLink, LegacyCopy:
		return mode, nil
	case "":
		return LegacyNone, nil
	default:
		return "", fmt.Errorf("unknown legacy mode %q (expected none, link, or copy)", value)
	}
}

var (
	audioCandidates = []string{"audio.mp4", "audio.m4a", "audio.wav", "audio.aac"}
	coverCandidates = []string{"cover.jpg", "cover.jpeg", "cover.png"}
)

// LocateAudio finds the audio asset in a piece directory: the known dump
// names in preference order, then any file whose stem is "audio"
// case-insensitively.
func LocateAudio(dir string) (string, bool) {
	return locateCandidate(dir, audioCandidates, "audio")
}

// LocateCover finds the cover image, preferring the known dump names and
// falling back to any file with stem "cover".
func LocateCover(dir string) (string, bool) {
	return locateCandidate(dir, coverCandidates, "cover")
}

// LocateAttachment looks up the extra file named in the piece metadata.
// An empty name means the piece has no attachment and no lookup happens.
func LocateAttachment(dir, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func locateCandidate(dir string, candidates []string, stem string) (string, bool) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return locateByStem(dir, stem)
}

func locateByStem(dir, stem string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.EqualFold(base, stem) {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}
