package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateElevenLabs(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateElevenLabs() error {
	parsed, err := url.Parse(c.ElevenLabs.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("elevenlabs.base_url %q is not a valid URL", c.ElevenLabs.BaseURL)
	}
	if c.ElevenLabs.Stability < 0 || c.ElevenLabs.Stability > 1 {
		return errors.New("elevenlabs.stability must be between 0 and 1")
	}
	if c.ElevenLabs.SimilarityBoost < 0 || c.ElevenLabs.SimilarityBoost > 1 {
		return errors.New("elevenlabs.similarity_boost must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
