package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LinkOutcome reports which legacy artifact was materialized at the original
// path after a rename. Hardlink creation is capability-dependent (filesystem,
// OS), so callers get the mode that actually succeeded rather than a boolean.
type LinkOutcome string

const (
	OutcomeHardlink LinkOutcome = "hardlink"
	OutcomeSymlink  LinkOutcome = "symlink"
	OutcomeCopy     LinkOutcome = "copy"
	OutcomeNone     LinkOutcome = "none"
)

// EnsureLink creates a hardlink at oldPath pointing to newPath, falling back
// to a relative symlink when hardlinking fails (for example across devices).
// An occupied oldPath is never replaced; os.ErrExist is returned so the
// caller can report it.
func EnsureLink(oldPath, newPath string) (LinkOutcome, error) {
	occupied, err := PathExists(oldPath)
	if err != nil {
		return OutcomeNone, err
	}
	if occupied {
		return OutcomeNone, fmt.Errorf("legacy path %s: %w", oldPath, os.ErrExist)
	}

	if err := os.Link(newPath, oldPath); err == nil {
		return OutcomeHardlink, nil
	}

	rel, err := filepath.Rel(filepath.Dir(oldPath), newPath)
	if err != nil {
		rel = newPath
	}
	if err := os.Symlink(rel, oldPath); err != nil {
		return OutcomeNone, fmt.Errorf("create legacy link %s -> %s: %w", filepath.Base(oldPath), filepath.Base(newPath), err)
	}
	return OutcomeSymlink, nil
}

// EnsureCopy duplicates newPath's bytes at oldPath with an independent inode,
// preserving the source's mode and modification time. An occupied oldPath is
// never replaced.
func EnsureCopy(oldPath, newPath string) (LinkOutcome, error) {
	occupied, err := PathExists(oldPath)
	if err != nil {
		return OutcomeNone, err
	}
	if occupied {
		return OutcomeNone, fmt.Errorf("legacy path %s: %w", oldPath, os.ErrExist)
	}

	info, err := os.Stat(newPath)
	if err != nil {
		return OutcomeNone, err
	}
	if err := CopyFileMode(newPath, oldPath, info.Mode().Perm()); err != nil {
		return OutcomeNone, fmt.Errorf("create legacy copy %s: %w", filepath.Base(oldPath), err)
	}
	_ = os.Chtimes(oldPath, info.ModTime(), info.ModTime())
	return OutcomeCopy, nil
}

// IsExist reports whether err stems from an occupied legacy path.
func IsExist(err error) bool {
	return errors.Is(err, os.ErrExist)
}
