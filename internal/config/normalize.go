package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Normalize expands the archive root, resolves derived paths against it, and
// canonicalizes enumerated settings. CLI flag overrides are written into the
// struct before this runs, so it is exported for the command layer.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRename()
	c.normalizeTagging()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Root) == "" {
		c.Paths.Root = "."
	}
	if c.Paths.Root, err = expandPath(c.Paths.Root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	if c.Paths.Metadata, err = c.resolveAgainstRoot(c.Paths.Metadata, defaultMetadataRelPath); err != nil {
		return fmt.Errorf("paths.metadata: %w", err)
	}
	if c.Paths.PiecesDir, err = c.resolveAgainstRoot(c.Paths.PiecesDir, defaultPiecesRelPath); err != nil {
		return fmt.Errorf("paths.pieces_dir: %w", err)
	}
	if c.Paths.RenameLog, err = c.resolveAgainstRoot(c.Paths.RenameLog, defaultRenameLogName); err != nil {
		return fmt.Errorf("paths.rename_log: %w", err)
	}
	if c.Paths.Catalog, err = c.resolveAgainstRoot(c.Paths.Catalog, defaultCatalogName); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	return nil
}

func (c *Config) resolveAgainstRoot(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	if strings.HasPrefix(value, "~") {
		return expandPath(value)
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value), nil
	}
	return filepath.Join(c.Paths.Root, value), nil
}

func (c *Config) normalizeRename() {
	c.Rename.LegacyMode = strings.ToLower(strings.TrimSpace(c.Rename.LegacyMode))
	if c.Rename.LegacyMode == "" {
		c.Rename.LegacyMode = defaultLegacyMode
	}
	c.Rename.Username = strings.TrimSpace(c.Rename.Username)
}

func (c *Config) normalizeTagging() {
	c.Tagging.Binary = strings.TrimSpace(c.Tagging.Binary)
	if c.Tagging.Binary == "" {
		c.Tagging.Binary = defaultTaggingBinary
	}
	if c.Tagging.TimeoutSecs <= 0 {
		c.Tagging.TimeoutSecs = defaultTaggingTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
