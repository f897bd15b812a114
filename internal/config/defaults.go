package config

const (
	defaultUserdataDir     = "~/.local/share/Steam/userdata"
	defaultExportDir       = "~/Desktop"
	defaultStagingDir      = "~/.local/share/steamclip/staging"
	defaultLogDir          = "~/.local/share/steamclip/logs"
	defaultProfile         = "copy"
	defaultConcurrency     = 2
	defaultContainer       = "mp4"
	defaultAppListPath     = "~/.config/steamclip/GameIDs.txt.bz2"
	defaultCustomNamesPath = "~/.config/steamclip/CustomGameIDs.json"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// MaxConcurrency is the hard ceiling on simultaneous export workers.
const MaxConcurrency = 16

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UserdataDir: defaultUserdataDir,
			ExportDir:   defaultExportDir,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
		},
		Export: Export{
			Profile:     defaultProfile,
			Concurrency: defaultConcurrency,
			Container:   defaultContainer,
		},
		GameNames: GameNames{
			AppListPath:     defaultAppListPath,
			CustomNamesPath: defaultCustomNamesPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
