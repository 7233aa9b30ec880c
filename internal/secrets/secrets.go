// Package secrets stores the synthesis API credential outside the config file.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes a single secret string backed by a 0600 file.
type Store struct {
	path string
}

// NewStore creates a store over the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored secret, or empty when none is set.
func (s *Store) Get() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Set persists the secret, creating the parent directory as needed.
func (s *Store) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("secret must not be empty")
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create secret directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(value+"\n"), 0o600); err != nil {
		return fmt.Errorf("write secret: %w", err)
	}
	return nil
}

// Clear removes the stored secret. Clearing an absent secret is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear secret: %w", err)
	}
	return nil
}

// Mask returns a display form that never exposes the full value.
func Mask(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + "…" + value[len(value)-4:]
}
