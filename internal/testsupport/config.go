package testsupport

import (
	"path/filepath"
	"testing"

	"alltihop/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory per test,
// normalized so all derived paths resolve under it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Root = base
	cfg.Rename.Username = "tester"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize test config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return &cfg
}

// WithUsername overrides the rename username on the test config.
func WithUsername(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rename.Username = name
	}
}

// WithLegacyMode sets the default legacy mode on the test config.
func WithLegacyMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rename.LegacyMode = mode
	}
}

// PiecesDir returns the resolved pieces directory for a test config.
func PiecesDir(cfg *config.Config) string {
	return cfg.Paths.PiecesDir
}

// MetadataPath returns where the export dump lives for a test config.
func MetadataPath(cfg *config.Config) string {
	return filepath.Clean(cfg.Paths.Metadata)
}
