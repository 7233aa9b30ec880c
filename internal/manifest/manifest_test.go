package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voxsmith/internal/manifest"
)

func TestRecorderAppendsInOrder(t *testing.T) {
	dir := t.TempDir()
	startedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rec, err := manifest.NewRecorder(dir, "/decks/quarterly.pptx", startedAt)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	for _, slide := range []int{2, 5, 7} {
		err := rec.Append(manifest.Entry{
			Slide:      slide,
			Outcome:    "done",
			VoiceID:    "v1",
			TextHash:   manifest.HashBytes([]byte("text")),
			AudioHash:  manifest.HashBytes([]byte("audio")),
			AudioBytes: 1024,
			Attempts:   1,
			HTTPStatus: 200,
		})
		if err != nil {
			t.Fatalf("Append slide %d failed: %v", slide, err)
		}
	}

	wantName := "quarterly_20260314-093000_manifest.json"
	if filepath.Base(rec.Path()) != wantName {
		t.Fatalf("manifest name = %q, want %q", filepath.Base(rec.Path()), wantName)
	}

	data, err := os.ReadFile(rec.Path())
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []manifest.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("manifest has %d entries, want 3", len(entries))
	}
	for i, slide := range []int{2, 5, 7} {
		if entries[i].Slide != slide {
			t.Fatalf("entry %d slide = %d, want %d", i, entries[i].Slide, slide)
		}
	}

	if err := manifest.Verify(rec.Path()); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestChecksumRewrittenPerAppend(t *testing.T) {
	dir := t.TempDir()
	rec, err := manifest.NewRecorder(dir, "talk.pptx", time.Now())
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	if err := rec.Append(manifest.Entry{Slide: 1, Outcome: "done"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	first, err := os.ReadFile(rec.ChecksumPath())
	if err != nil {
		t.Fatalf("read checksum: %v", err)
	}

	if err := rec.Append(manifest.Entry{Slide: 2, Outcome: "skipped", Reason: "no notes"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	second, err := os.ReadFile(rec.ChecksumPath())
	if err != nil {
		t.Fatalf("read checksum: %v", err)
	}

	if string(first) == string(second) {
		t.Fatal("checksum file should change after each append")
	}
	if !strings.Contains(string(second), filepath.Base(rec.Path())) {
		t.Fatalf("checksum line %q missing manifest name", second)
	}
	if err := manifest.Verify(rec.Path()); err != nil {
		t.Fatalf("Verify failed after second append: %v", err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	rec, err := manifest.NewRecorder(dir, "talk.pptx", time.Now())
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	if err := rec.Append(manifest.Entry{Slide: 1, Outcome: "done"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, _ := os.ReadFile(rec.Path())
	tampered := strings.Replace(string(data), "done", "fail", 1)
	if err := os.WriteFile(rec.Path(), []byte(tampered), 0o644); err != nil {
		t.Fatalf("tamper manifest: %v", err)
	}

	if err := manifest.Verify(rec.Path()); err == nil {
		t.Fatal("Verify should fail after tampering")
	}
}

func TestNewRecorderRefusesExistingManifest(t *testing.T) {
	dir := t.TempDir()
	startedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if _, err := manifest.NewRecorder(dir, "talk.pptx", startedAt); err != nil {
		t.Fatalf("first NewRecorder failed: %v", err)
	}
	if _, err := manifest.NewRecorder(dir, "talk.pptx", startedAt); err == nil {
		t.Fatal("expected error for duplicate manifest")
	}
}
