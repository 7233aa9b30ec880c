// Package config loads, validates, and defaults Voxsmith's TOML configuration.
package config
