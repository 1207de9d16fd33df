package config

const (
	defaultMetadataRelPath  = "dump/alltihop.json"
	defaultPiecesRelPath    = "dump/assets/pieces"
	defaultRenameLogName    = "rename_log.jsonl"
	defaultCatalogName      = "alltihop.db"
	defaultLegacyMode       = "none"
	defaultTaggingBinary    = "AtomicParsley"
	defaultTaggingTimeout   = 120
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultOverwriteSidecar = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root: ".",
		},
		Rename: Rename{
			LegacyMode: defaultLegacyMode,
		},
		Tagging: Tagging{
			Binary:        defaultTaggingBinary,
			OverwriteMeta: defaultOverwriteSidecar,
			TimeoutSecs:   defaultTaggingTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
