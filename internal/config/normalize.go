package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}

	c.ElevenLabs.BaseURL = strings.TrimRight(strings.TrimSpace(c.ElevenLabs.BaseURL), "/")
	if c.ElevenLabs.BaseURL == "" {
		c.ElevenLabs.BaseURL = defaultBaseURL
	}
	c.ElevenLabs.Voice = strings.TrimSpace(c.ElevenLabs.Voice)
	if strings.TrimSpace(c.ElevenLabs.OutputFormat) == "" {
		c.ElevenLabs.OutputFormat = defaultOutputFormat
	}
	if c.ElevenLabs.RequestTimeout <= 0 {
		c.ElevenLabs.RequestTimeout = defaultRequestTimeout
	}
	if c.ElevenLabs.VoiceCacheMaxAgeH <= 0 {
		c.ElevenLabs.VoiceCacheMaxAgeH = defaultVoiceCacheMaxAgeH
	}

	if strings.TrimSpace(c.Transcode.FFmpegBinary) == "" {
		c.Transcode.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Transcode.Timeout <= 0 {
		c.Transcode.Timeout = defaultTranscodeTimeout
	}

	if strings.TrimSpace(c.Run.ReadSlideMarker) == "" {
		c.Run.ReadSlideMarker = defaultReadSlideMarker
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
