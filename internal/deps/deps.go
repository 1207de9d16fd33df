// Package deps reports the availability of the external binaries the tool
// shells out to. Renaming and undo are pure filesystem work and need none of
// them; tagging requires AtomicParsley.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"alltihop/internal/config"
)

// Requirement is one external binary the tool may invoke.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the resolved availability of a requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// ForConfig lists the requirements for the configured setup.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "AtomicParsley",
			Command:     cfg.Tagging.Binary,
			Description: "Embeds tags, artwork, and archival JSON into MP4/M4A files (tag command only)",
			Optional:    true,
		},
	}
}

// Check resolves each requirement against PATH.
func Check(requirements []Requirement) []Status {
	statuses := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{Requirement: req}
		status.Command = strings.TrimSpace(req.Command)
		switch {
		case status.Command == "":
			status.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(status.Command); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", status.Command)
			} else {
				status.Available = true
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// MissingRequired returns the names of unavailable non-optional requirements.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
