package testsupport

import (
	"testing"

	"voxsmith/internal/config"
	"voxsmith/internal/voices"
)

// MustOpenVoices opens a voices.Store for tests and registers cleanup.
func MustOpenVoices(t testing.TB, cfg *config.Config) *voices.Store {
	t.Helper()

	store, err := voices.Open(cfg)
	if err != nil {
		t.Fatalf("voices.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
