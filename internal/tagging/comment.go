package tagging

import (
	"math"
	"strconv"
	"strings"
)

// BuildComment assembles the archival comment tag from the piece description
// and its collaborator list. Collaborators are de-duplicated case-insensitively
// in original order and the archive owner is dropped; when any remain they are
// appended as a "Collaborators:" block under the description.
func BuildComment(description string, collaborators []string, username string) string {
	desc := strings.TrimRight(description, " \t\r\n")
	owner := strings.ToLower(strings.TrimSpace(username))

	var kept []string
	seen := make(map[string]struct{})
	for _, raw := range collaborators {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		norm := strings.ToLower(name)
		if owner != "" && norm == owner {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		kept = append(kept, name)
	}
	if len(kept) == 0 {
		return desc
	}

	tail := "Collaborators:\n" + strings.Join(kept, "\n")
	if desc == "" {
		return tail
	}
	return desc + "\n\n" + tail
}

// ParseBPM converts the export's tempo value ("105.000", "120") to the
// integer beats-per-minute an MP4 tmpo atom expects. Non-numeric and
// non-positive values report false.
func ParseBPM(tempo string) (int, bool) {
	trimmed := strings.TrimSpace(tempo)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int(math.Round(f)), true
}
