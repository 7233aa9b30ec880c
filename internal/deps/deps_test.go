package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "   "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for unset command: %#v", results[2])
	}
}

func TestRequirementsDefaultCommand(t *testing.T) {
	reqs := Requirements("  ")
	if len(reqs) != 1 || reqs[0].Command != "ffmpeg" {
		t.Fatalf("requirements = %#v", reqs)
	}
	reqs = Requirements("/opt/ffmpeg/bin/ffmpeg")
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("configured command lost: %#v", reqs[0])
	}
}

func TestCheckFFmpegConfiguredPath(t *testing.T) {
	tmp := t.TempDir()
	ffmpegPath := filepath.Join(tmp, "ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	status := CheckFFmpeg(ffmpegPath)
	if !status.Available {
		t.Fatalf("expected configured ffmpeg to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestCheckFFmpegPathFallback(t *testing.T) {
	binDir := t.TempDir()
	ffmpegPath := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	status := CheckFFmpeg("")
	if !status.Available {
		t.Fatalf("expected ffmpeg fallback to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestCheckFFmpegNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	status := CheckFFmpeg("")
	if status.Available {
		t.Fatal("expected ffmpeg resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when ffmpeg is unavailable")
	}
}
