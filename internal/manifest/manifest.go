// Package manifest keeps a checksummed audit trail of narration runs.
//
// Each run writes one JSON array file named after the deck and the run
// timestamp. A sibling .sha256 file is rewritten after every append so a
// partially written manifest stays independently verifiable. Manifests
// from earlier runs are never touched.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxsmith/internal/services"
)

// Entry is one audit record per processed slide.
type Entry struct {
	Slide      int       `json:"slide"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	VoiceID    string    `json:"voice_id,omitempty"`
	TextHash   string    `json:"text_hash,omitempty"`
	AudioHash  string    `json:"audio_hash,omitempty"`
	AudioBytes int64     `json:"audio_bytes,omitempty"`
	Attempts   int       `json:"attempts,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	AudioFile  string    `json:"audio_file,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Recorder appends entries to a per-run manifest file.
type Recorder struct {
	path    string
	sumPath string
	entries []Entry
	clock   func() time.Time
}

// NewRecorder creates the manifest file for a run. The file is named
// <deck>_<timestamp>_manifest.json under dir and must not already exist.
func NewRecorder(dir, deckPath string, startedAt time.Time) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrProcess, "manifest", "create", "create manifest directory", err)
	}
	deckName := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
	if deckName == "" {
		deckName = "deck"
	}
	name := fmt.Sprintf("%s_%s_manifest.json", deckName, startedAt.Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil, services.Wrap(services.ErrProcess, "manifest", "create",
			fmt.Sprintf("manifest %s already exists", name), nil)
	}

	r := &Recorder{
		path:    path,
		sumPath: path + ".sha256",
		clock:   time.Now,
	}
	if err := r.flush(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the manifest file location.
func (r *Recorder) Path() string { return r.path }

// ChecksumPath returns the sidecar checksum file location.
func (r *Recorder) ChecksumPath() string { return r.sumPath }

// Append records one slide outcome and rewrites both the manifest and
// its checksum sidecar.
func (r *Recorder) Append(entry Entry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = r.clock().UTC()
	}
	r.entries = append(r.entries, entry)
	return r.flush()
}

func (r *Recorder) flush() error {
	entries := r.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrProcess, "manifest", "append", "encode manifest", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return services.Wrap(services.ErrProcess, "manifest", "append", "write manifest", err)
	}

	sum := sha256.Sum256(data)
	line := fmt.Sprintf("%s  %s\n", hex.EncodeToString(sum[:]), filepath.Base(r.path))
	if err := os.WriteFile(r.sumPath, []byte(line), 0o644); err != nil {
		return services.Wrap(services.ErrProcess, "manifest", "append", "write manifest checksum", err)
	}
	return nil
}

// Verify recomputes the manifest checksum and compares it against the
// sidecar file.
func Verify(manifestPath string) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return services.Wrap(services.ErrProcess, "manifest", "verify", "read manifest", err)
	}
	sidecar, err := os.ReadFile(manifestPath + ".sha256")
	if err != nil {
		return services.Wrap(services.ErrProcess, "manifest", "verify", "read manifest checksum", err)
	}
	fields := strings.Fields(string(sidecar))
	if len(fields) < 1 {
		return services.Wrap(services.ErrProcess, "manifest", "verify", "malformed checksum file", nil)
	}
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != fields[0] {
		return services.Wrap(services.ErrProcess, "manifest", "verify", "manifest checksum mismatch", nil)
	}
	return nil
}

// HashBytes returns the hex SHA-256 of content, used for text and audio
// hashes in manifest entries.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
