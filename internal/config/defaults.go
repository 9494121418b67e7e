package config

const (
	defaultLogDir     = "~/.local/share/embseg/logs"
	defaultLedgerPath = "~/.local/share/embseg/ledger.db"

	defaultEarlyProbThresh = 0.5
	defaultEarlyNMSThresh  = 0.3
	defaultLateProbThresh  = 0.451
	defaultLateNMSThresh   = 0.5

	defaultRunnerBinary  = "stardist-runner"
	defaultRunnerTimeout = 3600
	defaultMinFreeGiB    = 2

	defaultOutputFormat = "tif"
	defaultPixelSize    = "0.2,0.2,2"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns the repository default configuration. Model directories
// have no default; they must come from the config file, environment, or
// flags.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			LedgerPath: defaultLedgerPath,
		},
		Models: Models{
			EarlyProbThresh: defaultEarlyProbThresh,
			EarlyNMSThresh:  defaultEarlyNMSThresh,
			LateProbThresh:  defaultLateProbThresh,
			LateNMSThresh:   defaultLateNMSThresh,
			TimepointSwitch: -1,
		},
		Runner: Runner{
			Binary:         defaultRunnerBinary,
			TimeoutSeconds: defaultRunnerTimeout,
			MinFreeGiB:     defaultMinFreeGiB,
		},
		Output: Output{
			Format:       defaultOutputFormat,
			PixelSizeXYZ: defaultPixelSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
