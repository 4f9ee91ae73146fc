package config

const (
	defaultDataDir       = "~/.local/share/paneltrim"
	defaultWorkDir       = "~/.local/share/paneltrim/work"
	defaultLogDir        = "~/.local/share/paneltrim/logs"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	// Sampling cadences. See the Scan struct for how the two relate (they
	// intentionally do not).
	defaultDecodeFPS             = 10.0
	defaultSampleSpacing         = 0.1
	defaultAcquireTimeoutSeconds = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Scan: Scan{
			DecodeFPS:             defaultDecodeFPS,
			SampleSpacing:         defaultSampleSpacing,
			AcquireTimeoutSeconds: defaultAcquireTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
