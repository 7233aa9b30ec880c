// Package audio normalizes synthesized narration to a fixed WAV profile.
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"voxsmith/internal/services"
)

// Output profile: 44.1kHz stereo 16-bit PCM. Every narration file in a
// deck shares the same profile so slide-to-slide playback is seamless.
const (
	sampleRate = "44100"
	channels   = "2"
	codec      = "pcm_s16le"
)

// Normalizer transcodes raw synthesis output via an external ffmpeg process.
type Normalizer struct {
	binary  string
	timeout time.Duration
}

func NewNormalizer(binary string, timeout time.Duration) *Normalizer {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Normalizer{binary: binary, timeout: timeout}
}

// Normalize transcodes input into a normalized WAV at output. A non-zero
// ffmpeg exit is a process failure for the slide being transcoded, not
// for the whole run.
func (n *Normalizer) Normalize(ctx context.Context, input, output string) error {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrValidation, "transcode", "normalize", "input and output paths required", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", input,
		"-ar", sampleRate,
		"-ac", channels,
		"-acodec", codec,
		output,
	}
	cmd := exec.CommandContext(ctx, n.binary, args...) //nolint:gosec
	if out, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrProcess, "transcode", "normalize",
			fmt.Sprintf("%s: %s", n.binary, strings.TrimSpace(string(out))), err)
	}
	return nil
}

// NormalizeBytes writes raw synthesis bytes to a scratch file beside the
// output and transcodes them into it. The scratch file is removed
// afterwards whether the transcode succeeded or not.
func (n *Normalizer) NormalizeBytes(ctx context.Context, raw []byte, output string) error {
	if len(raw) == 0 {
		return services.Wrap(services.ErrValidation, "transcode", "normalize", "no audio bytes to transcode", nil)
	}
	scratch, err := os.CreateTemp(filepath.Dir(output), ".voxsmith-raw-*")
	if err != nil {
		return services.Wrap(services.ErrProcess, "transcode", "normalize", "create scratch file", err)
	}
	scratchPath := scratch.Name()
	defer os.Remove(scratchPath)

	if _, err := scratch.Write(raw); err != nil {
		scratch.Close()
		return services.Wrap(services.ErrProcess, "transcode", "normalize", "write scratch file", err)
	}
	if err := scratch.Close(); err != nil {
		return services.Wrap(services.ErrProcess, "transcode", "normalize", "close scratch file", err)
	}
	return n.Normalize(ctx, scratchPath, output)
}
