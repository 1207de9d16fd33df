package tagging

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	taggableAudioExts = []string{".mp4", ".m4a", ".aac"}
	legacyAudioExts   = []string{".mp4", ".m4a", ".aac", ".wav", ".flac", ".mp3", ".ogg"}
	coverExts         = []string{".jpg", ".jpeg", ".png"}
)

// CanTag reports whether the file's container supports MP4-style tags.
func CanTag(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range taggableAudioExts {
		if ext == candidate {
			return true
		}
	}
	return false
}

// FindAudio locates the audio asset for tagging: the renamed form
// <base>.<ext> first, then the legacy audio.* names, then a lone MP4-family
// file in the folder.
func FindAudio(dir, base string) (string, bool) {
	for _, ext := range taggableAudioExts {
		if path, ok := fileAt(dir, base+ext); ok {
			return path, ok
		}
	}
	for _, ext := range legacyAudioExts {
		if path, ok := fileAt(dir, "audio"+ext); ok {
			return path, ok
		}
	}
	if path, ok := findByStem(dir, "audio"); ok {
		return path, ok
	}
	return soleFileWithExt(dir, taggableAudioExts)
}

// FindCover locates artwork for embedding: the renamed <base>.cover.<ext>
// first, then the legacy cover.* names, then a lone image in the folder.
func FindCover(dir, base string) (string, bool) {
	for _, ext := range coverExts {
		if path, ok := fileAt(dir, base+".cover"+ext); ok {
			return path, ok
		}
	}
	for _, ext := range coverExts {
		if path, ok := fileAt(dir, "cover"+ext); ok {
			return path, ok
		}
	}
	if path, ok := findByStem(dir, "cover"); ok {
		return path, ok
	}
	return soleFileWithExt(dir, coverExts)
}

func fileAt(dir, name string) (string, bool) {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func findByStem(dir, stem string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(strings.TrimSuffix(name, filepath.Ext(name)), stem) {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}

func soleFileWithExt(dir string, exts []string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, candidate := range exts {
			if ext == candidate {
				matches = append(matches, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}
