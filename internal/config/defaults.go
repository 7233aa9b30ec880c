package config

const (
	defaultOutputDir         = "~/voxsmith/output"
	defaultLogDir            = "~/.local/share/voxsmith/logs"
	defaultStateDir          = "~/.local/share/voxsmith"
	defaultBaseURL           = "https://api.elevenlabs.io"
	defaultOutputFormat      = "mp3_44100_128"
	defaultRequestTimeout    = 30
	defaultStability         = 0.5
	defaultSimilarityBoost   = 0.75
	defaultVoiceCacheMaxAgeH = 168
	defaultFFmpegBinary      = "ffmpeg"
	defaultTranscodeTimeout  = 120
	defaultReadSlideMarker   = "[[ReadSlide]]"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		ElevenLabs: ElevenLabs{
			BaseURL:           defaultBaseURL,
			OutputFormat:      defaultOutputFormat,
			RequestTimeout:    defaultRequestTimeout,
			Stability:         defaultStability,
			SimilarityBoost:   defaultSimilarityBoost,
			VoiceCacheMaxAgeH: defaultVoiceCacheMaxAgeH,
		},
		Transcode: Transcode{
			FFmpegBinary: defaultFFmpegBinary,
			Timeout:      defaultTranscodeTimeout,
		},
		Run: Run{
			ReadSlideMarker: defaultReadSlideMarker,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
