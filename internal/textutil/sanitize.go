package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxBaseLength caps the pre-extension portion of generated filenames.
const maxBaseLength = 150

const fallbackBase = "untitled"

// windowsReserved holds the device names that cannot be used as filename
// stems on Windows, upper-cased for comparison.
var windowsReserved = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SafeFileBase turns an arbitrary string into a portable filename base.
// Unicode is kept (NFC-normalized); whitespace runs collapse to a single
// underscore, or a single space when preserveBlanks is set; characters
// illegal on Windows and all control characters become underscores; trailing
// dots and spaces are stripped; reserved device names are wrapped in
// underscores; the result is capped at 150 runes. Deterministic, no
// filesystem access. Extensions are the caller's concern and are never
// touched here.
//
// Whitespace collapsing runs before illegal-character replacement, so an
// underscore produced from a replaced character survives next to one produced
// from whitespace: "Track: Title" becomes "Track__Title".
func SafeFileBase(raw string, preserveBlanks bool) string {
	s := strings.TrimSpace(norm.NFC.String(raw))

	s = collapseWhitespace(s, preserveBlanks)
	if s == "" {
		s = fallbackBase
	}

	s = replaceIllegalRunes(s)

	s = strings.TrimRight(s, " .")

	if _, reserved := windowsReserved[strings.ToUpper(s)]; reserved {
		s = "_" + s + "_"
	}

	if runes := []rune(s); len(runes) > maxBaseLength {
		s = strings.TrimRight(string(runes[:maxBaseLength]), " .")
	}

	if s == "" {
		return fallbackBase
	}
	return s
}

// collapseWhitespace reduces whitespace runs to a single space, or a single
// underscore when preserveBlanks is false. In underscore mode runs of
// underscores (whether from whitespace or already present in the input) are
// collapsed as well.
func collapseWhitespace(s string, preserveBlanks bool) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = true
			continue
		}
		if !preserveBlanks && r == '_' {
			pending = true
			continue
		}
		if pending {
			if preserveBlanks {
				b.WriteByte(' ')
			} else {
				b.WriteByte('_')
			}
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func replaceIllegalRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isIllegalFilenameRune(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isIllegalFilenameRune(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return r < 0x20 || r == 0x7f
}
