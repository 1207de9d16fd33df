package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"log/slog"

	"alltihop/internal/config"
	"alltihop/internal/logging"
	"alltihop/internal/metadata"
	"alltihop/internal/services"
)

// overrides carries global flag values that shadow config file settings.
// Pointer fields distinguish "not given" from an explicit zero value.
type overrides struct {
	root           string
	meta           string
	piecesDir      string
	renameLog      string
	username       string
	preserveBlanks *bool
}

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	overrides  overrides

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, jsonFlag: jsonFlag}
}

// ensureConfig loads the config file once, layers flag overrides on top, and
// resolves all derived paths.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Read(path)
		if err != nil {
			c.configErr = err
			return
		}

		if v := strings.TrimSpace(c.overrides.root); v != "" {
			cfg.Paths.Root = v
		}
		if v := strings.TrimSpace(c.overrides.meta); v != "" {
			cfg.Paths.Metadata = v
		}
		if v := strings.TrimSpace(c.overrides.piecesDir); v != "" {
			cfg.Paths.PiecesDir = v
		}
		if v := strings.TrimSpace(c.overrides.renameLog); v != "" {
			cfg.Paths.RenameLog = v
		}
		if v := strings.TrimSpace(c.overrides.username); v != "" {
			cfg.Rename.Username = v
		}
		if c.overrides.preserveBlanks != nil {
			cfg.Rename.PreserveBlanks = *c.overrides.preserveBlanks
		}

		if err := cfg.Normalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// loadExport reads and parses the metadata dump, and resolves the username
// used in generated filenames (config/flag override first, then the export's
// own user).
func (c *commandContext) loadExport() (*metadata.Export, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	export, err := metadata.Load(cfg.Paths.Metadata)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", services.Wrap(services.ErrConfiguration, "loading", "read metadata", fmt.Sprintf("Metadata dump not found at %s; set paths.metadata or pass --meta", cfg.Paths.Metadata), err)
		}
		return nil, "", services.Wrap(services.ErrValidation, "loading", "parse metadata", fmt.Sprintf("Metadata dump at %s is unreadable or malformed", cfg.Paths.Metadata), err)
	}
	username := cfg.Rename.Username
	if username == "" {
		username = export.DefaultUsername()
	}
	return export, username, nil
}
