package secrets_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"voxsmith/internal/secrets"
)

func TestSetGetClearRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "apikey")
	store := secrets.NewStore(path)

	if got := store.Get(); got != "" {
		t.Fatalf("expected empty secret before Set, got %q", got)
	}

	if err := store.Set("  sk-abc123  "); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := store.Get(); got != "sk-abc123" {
		t.Fatalf("Get = %q, want trimmed secret", got)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat secret file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Fatalf("secret file mode = %o, want 0600", perm)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := store.Get(); got != "" {
		t.Fatalf("expected empty secret after Clear, got %q", got)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	store := secrets.NewStore(filepath.Join(t.TempDir(), "apikey"))
	if err := store.Set("   "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestMask(t *testing.T) {
	if got := secrets.Mask(""); got != "(not set)" {
		t.Fatalf("Mask empty = %q", got)
	}
	if got := secrets.Mask("short"); got != "********" {
		t.Fatalf("Mask short = %q", got)
	}
	masked := secrets.Mask("sk-1234567890abcdef")
	if masked == "sk-1234567890abcdef" {
		t.Fatal("Mask returned full value")
	}
}
