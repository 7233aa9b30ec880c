// Package attach sequences the per-slide narration pipeline: resolve
// notes, synthesize, normalize, and attach the audio to the slide while
// preserving its animations.
package attach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"voxsmith/internal/anim"
	"voxsmith/internal/deck"
	"voxsmith/internal/logging"
	"voxsmith/internal/manifest"
	"voxsmith/internal/notes"
	"voxsmith/internal/services"
	"voxsmith/internal/services/elevenlabs"
)

// Status is one step of the per-slide state machine. Every slide moves
// through these in order; skipped and failed are terminal from any step.
type Status string

const (
	StatusPending           Status = "pending"
	StatusNotesResolved     Status = "notes_resolved"
	StatusSynthesized       Status = "synthesized"
	StatusConverted         Status = "converted"
	StatusAudioOnlyDone     Status = "audio_only_done"
	StatusSnapshotTaken     Status = "snapshot_taken"
	StatusTimelineCleared   Status = "timeline_cleared"
	StatusMediaInserted     Status = "media_inserted"
	StatusAnimationRestored Status = "animation_restored"
	StatusSaved             Status = "saved"
	StatusDone              Status = "done"
	StatusSkipped           Status = "skipped"
	StatusFailed            Status = "failed"
)

// Outcome is the per-slide result variant consumed by the run loop and
// the manifest recorder alike.
type Outcome struct {
	Slide      int
	Status     Status
	Reason     string
	Err        error
	VoiceID    string
	TextHash   string
	AudioHash  string
	AudioBytes int64
	Attempts   int
	HTTPStatus int
	AudioFile  string
}

// Skipped reports whether the slide ended in a skip condition rather
// than success or failure.
func (o Outcome) Skipped() bool { return o.Status == StatusSkipped }

// Failed reports whether the slide ended in a failure.
func (o Outcome) Failed() bool { return o.Status == StatusFailed }

// ManifestEntry converts the outcome into its audit record.
func (o Outcome) ManifestEntry() manifest.Entry {
	reason := o.Reason
	if o.Err != nil {
		reason = o.Err.Error()
	}
	return manifest.Entry{
		Slide:      o.Slide,
		Outcome:    string(o.Status),
		Reason:     reason,
		VoiceID:    o.VoiceID,
		TextHash:   o.TextHash,
		AudioHash:  o.AudioHash,
		AudioBytes: o.AudioBytes,
		Attempts:   o.Attempts,
		HTTPStatus: o.HTTPStatus,
		AudioFile:  o.AudioFile,
	}
}

// Synthesizer produces narration audio for a slide's text.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceID, text string) (*elevenlabs.SynthesisResult, error)
}

// Normalizer transcodes raw synthesis bytes into the output WAV profile.
type Normalizer interface {
	NormalizeBytes(ctx context.Context, raw []byte, output string) error
}

// Options parameterize an Orchestrator.
type Options struct {
	Resolver   *notes.Resolver
	Synth      Synthesizer
	Normalizer Normalizer
	Engine     *anim.Engine
	OutputDir  string
	VoiceID    string
	AudioOnly  bool
	Logger     *slog.Logger
}

// Orchestrator drives one slide at a time through the state machine. It
// is the only component that mutates the document.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "attach"),
	}
}

// AudioFileName returns the output file name for a slide, zero-padded to
// at least two digits.
func AudioFileName(slideNumber int) string {
	return fmt.Sprintf("slide%02d.wav", slideNumber)
}

// Process runs one slide through the state machine. The snapshot must
// have been captured before any slide in the run was mutated. Per-slide
// failures are returned in the Outcome, not as an error; the run always
// continues to the next slide.
func (o *Orchestrator) Process(ctx context.Context, d deck.Deck, slide deck.Slide, snap *anim.Snapshot) Outcome {
	out := Outcome{Slide: slide.Number(), Status: StatusPending, VoiceID: o.opts.VoiceID}
	ctx = services.WithSlide(ctx, slide.Number())

	stageCtx := services.WithStage(ctx, "notes")
	text, err := o.opts.Resolver.Resolve(slide)
	if err != nil {
		return o.fail(stageCtx, out, "resolve notes", err)
	}
	if text == "" {
		return o.skip(stageCtx, out, "no notes")
	}
	out.Status = StatusNotesResolved
	out.TextHash = manifest.HashBytes([]byte(text))

	stageCtx = services.WithStage(ctx, "synthesis")
	result, err := o.opts.Synth.Synthesize(stageCtx, o.opts.VoiceID, text)
	if err != nil {
		var synthErr *elevenlabs.SynthesisError
		if errors.As(err, &synthErr) {
			out.Attempts = synthErr.Result.Attempts
			out.HTTPStatus = synthErr.Result.HTTPStatus
		}
		return o.fail(stageCtx, out, "synthesize narration", err)
	}
	out.Status = StatusSynthesized
	out.Attempts = result.Attempts
	out.HTTPStatus = result.HTTPStatus

	stageCtx = services.WithStage(ctx, "transcode")
	audioPath := filepath.Join(o.opts.OutputDir, AudioFileName(slide.Number()))
	if err := o.opts.Normalizer.NormalizeBytes(stageCtx, result.Audio, audioPath); err != nil {
		return o.fail(stageCtx, out, "normalize audio", err)
	}
	out.Status = StatusConverted
	out.AudioFile = audioPath
	if info, err := os.Stat(audioPath); err == nil {
		out.AudioBytes = info.Size()
	}
	if normalized, err := os.ReadFile(audioPath); err == nil {
		out.AudioHash = manifest.HashBytes(normalized)
	}

	if o.opts.AudioOnly {
		out.Status = StatusAudioOnlyDone
		logging.WithContext(stageCtx, o.logger).Info("narration written, audio-only mode",
			logging.String("file", audioPath))
		return out
	}

	stageCtx = services.WithStage(ctx, "attach")
	out.Status = StatusSnapshotTaken
	if skip, reason := anim.ShouldSkipAttachment(snap); skip {
		// The audio file stays on disk for manual insertion.
		return o.skip(stageCtx, out, reason)
	}

	if err := slide.Timeline().Clear(); err != nil {
		return o.fail(stageCtx, out, "clear timeline", err)
	}
	out.Status = StatusTimelineCleared

	audioShape, err := slide.InsertAudio(audioPath)
	if err != nil {
		return o.fail(stageCtx, out, "insert audio shape", err)
	}
	out.Status = StatusMediaInserted

	if err := o.opts.Engine.Restore(slide, snap, audioShape); err != nil {
		// The snapshot is retained for manual recovery; the document is
		// still valid, just with fewer animations.
		return o.fail(stageCtx, out, "restore animations", err)
	}
	out.Status = StatusAnimationRestored

	stageCtx = services.WithStage(ctx, "save")
	if err := d.Save(); err != nil {
		return o.fail(stageCtx, out, "save document", err)
	}

	out.Status = StatusDone
	logging.WithContext(stageCtx, o.logger).Info("narration attached",
		logging.String("file", audioPath))
	return out
}

func (o *Orchestrator) skip(ctx context.Context, out Outcome, reason string) Outcome {
	out.Status = StatusSkipped
	out.Reason = reason
	logging.WithContext(ctx, o.logger).Info("slide skipped", logging.String("reason", reason))
	return out
}

func (o *Orchestrator) fail(ctx context.Context, out Outcome, operation string, err error) Outcome {
	out.Status = StatusFailed
	out.Err = err
	logging.WithContext(ctx, o.logger).Error(operation+" failed",
		logging.String("kind", services.Kind(err)),
		logging.Error(err))
	return out
}
