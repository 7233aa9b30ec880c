package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"voxsmith/internal/config"
	"voxsmith/internal/logging"
	"voxsmith/internal/secrets"
	"voxsmith/internal/services/elevenlabs"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) secretStore() (*secrets.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path, err := cfg.SecretPath()
	if err != nil {
		return nil, err
	}
	return secrets.NewStore(path), nil
}

// logger builds the run logger with the credential registered for
// redaction so it can never reach a log sink.
func (c *commandContext) logger(secret string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var redact []string
	if strings.TrimSpace(secret) != "" {
		redact = append(redact, secret)
	}
	return logging.NewFromConfig(cfg, redact...)
}

func (c *commandContext) synthClient(secret string) (*elevenlabs.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return elevenlabs.New(
		secret,
		cfg.ElevenLabs.BaseURL,
		time.Duration(cfg.ElevenLabs.RequestTimeout)*time.Second,
		elevenlabs.WithOutputFormat(cfg.ElevenLabs.OutputFormat),
		elevenlabs.WithVoiceSettings(elevenlabs.VoiceSettings{
			Stability:       cfg.ElevenLabs.Stability,
			SimilarityBoost: cfg.ElevenLabs.SimilarityBoost,
		}),
	)
}

func (c *commandContext) voiceCacheMaxAge() time.Duration {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.ElevenLabs.VoiceCacheMaxAgeH <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(cfg.ElevenLabs.VoiceCacheMaxAgeH) * time.Hour
}
