// Package run owns the run-level lifecycle of a narration pass: locking,
// preflight, up-front animation snapshots, and the strictly ordered
// slide loop.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"voxsmith/internal/anim"
	"voxsmith/internal/attach"
	"voxsmith/internal/config"
	"voxsmith/internal/deck"
	"voxsmith/internal/deps"
	"voxsmith/internal/logging"
	"voxsmith/internal/manifest"
	"voxsmith/internal/notes"
	"voxsmith/internal/services"
	"voxsmith/internal/sliderange"
)

// Event is one progress notification emitted as the run advances. The
// consumer owns marshaling to whatever thread renders it.
type Event struct {
	RunID   string
	Slide   int
	Status  attach.Status
	Message string
}

// Summary reports run results to the caller. Partial output is the
// expected steady state, not a failure condition.
type Summary struct {
	RunID        string
	Processed    int
	Skipped      int
	Failed       int
	Cancelled    bool
	ManifestPath string
	Outcomes     []attach.Outcome
}

// Options parameterize a Controller. Every collaborator is injected so a
// run is fully testable without process-wide setup.
type Options struct {
	Config     *config.Config
	Deck       deck.Deck
	Selection  string
	Secret     string
	VoiceID    string
	Synth      attach.Synthesizer
	Normalizer attach.Normalizer
	Logger     *slog.Logger

	// Events receives progress notifications when non-nil. Sends never
	// block; a slow consumer drops events instead of stalling the run.
	Events chan<- Event

	// SkipBinaryCheck bypasses the ffmpeg preflight probe. Tests that
	// stub the normalizer use it.
	SkipBinaryCheck bool
}

// Controller drives one narration run against one deck.
type Controller struct {
	opts   Options
	logger *slog.Logger
	runID  string
	engine *anim.Engine
}

func New(opts Options) (*Controller, error) {
	if opts.Config == nil {
		return nil, services.Wrap(services.ErrValidation, "preflight", "new-run", "config required", nil)
	}
	if opts.Deck == nil {
		return nil, services.Wrap(services.ErrFatalHost, "preflight", "new-run", "deck handle required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	runID := uuid.NewString()
	return &Controller{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "run").With(logging.String(logging.FieldRunID, runID)),
		runID:  runID,
		engine: anim.NewEngine(logger),
	}, nil
}

// RunID identifies this run in logs, events, and the manifest.
func (c *Controller) RunID() string { return c.runID }

// Run executes the narration pass. Fatal preflight conditions abort
// before any slide work; per-slide failures are counted and the loop
// continues. Cancellation is cooperative and checked at slide
// boundaries only, never mid-slide.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	if err := c.preflight(); err != nil {
		return nil, err
	}

	lock, err := c.acquireLock()
	if err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			c.logger.Warn("failed to release run lock", logging.Error(unlockErr))
		}
	}()

	selected := sliderange.Parse(c.opts.Selection, c.opts.Deck.SlideCount())
	if len(selected) == 0 {
		return nil, services.Wrap(services.ErrValidation, "preflight", "select-slides",
			fmt.Sprintf("selection %q matches no slides", c.opts.Selection), nil)
	}
	c.logger.Info("run starting",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("deck", c.opts.Deck.Path()),
		logging.Int("slides", len(selected)),
		logging.Bool("audio_only", c.opts.Config.Run.AudioOnly))

	recorder, err := manifest.NewRecorder(c.opts.Config.Paths.OutputDir, c.opts.Deck.Path(), time.Now())
	if err != nil {
		return nil, err
	}

	snapshots, err := c.captureSnapshots(selected)
	if err != nil {
		return nil, err
	}

	orch := attach.NewOrchestrator(attach.Options{
		Resolver:   notes.NewResolver(c.opts.Config.Run.ReadSlideMarker, c.logger),
		Synth:      c.opts.Synth,
		Normalizer: c.opts.Normalizer,
		Engine:     c.engine,
		OutputDir:  c.opts.Config.Paths.OutputDir,
		VoiceID:    c.opts.VoiceID,
		AudioOnly:  c.opts.Config.Run.AudioOnly,
		Logger:     c.logger,
	})

	summary := &Summary{RunID: c.runID, ManifestPath: recorder.Path()}
	mutated := false
	for _, number := range selected {
		if ctx.Err() != nil {
			summary.Cancelled = true
			c.logger.Info("run cancelled at slide boundary",
				logging.String(logging.FieldEventType, "run_cancelled"),
				logging.Int(logging.FieldSlide, number))
			break
		}

		slide, err := c.opts.Deck.Slide(number)
		if err != nil {
			return nil, services.Wrap(services.ErrFatalHost, "run", "open-slide",
				fmt.Sprintf("open slide %d", number), err)
		}

		// The slide context is detached from the run's cancel signal so a
		// cancel arriving mid-slide never interrupts in-flight synthesis or
		// transcoding. Per-call timeouts still bound each operation; the
		// cancel takes effect at the next boundary check above.
		slideCtx := services.WithSlide(services.WithRunID(context.WithoutCancel(ctx), c.runID), number)
		out := orch.Process(slideCtx, c.opts.Deck, slide, snapshots[number])
		summary.Outcomes = append(summary.Outcomes, out)
		switch {
		case out.Failed():
			summary.Failed++
		case out.Skipped():
			summary.Skipped++
		default:
			summary.Processed++
			if out.Status == attach.StatusDone {
				mutated = true
			}
		}
		c.emit(out)

		if err := recorder.Append(out.ManifestEntry()); err != nil {
			c.logger.Warn("manifest append failed", logging.Error(err))
		}
	}

	if mutated {
		if err := c.opts.Deck.Save(); err != nil {
			c.logger.Warn("final document save failed", logging.Error(err))
		}
	}

	c.logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Bool("cancelled", summary.Cancelled))
	return summary, nil
}

// preflight verifies every fatal condition before any slide work:
// credential, voice, deck, writability in attach mode, and the
// transcoder binary.
func (c *Controller) preflight() error {
	if strings.TrimSpace(c.opts.Secret) == "" {
		return services.Wrap(services.ErrValidation, "preflight", "check-credential", "api credential is not set", nil)
	}
	if strings.TrimSpace(c.opts.VoiceID) == "" {
		return services.Wrap(services.ErrValidation, "preflight", "check-voice", "voice id is not resolved", nil)
	}
	if c.opts.Synth == nil || c.opts.Normalizer == nil {
		return services.Wrap(services.ErrValidation, "preflight", "check-services", "synthesis and transcode services required", nil)
	}
	if c.opts.Deck.SlideCount() < 1 {
		return services.Wrap(services.ErrFatalHost, "preflight", "check-deck", "deck has no slides", nil)
	}
	if !c.opts.Config.Run.AudioOnly && !deck.Mutable(c.opts.Deck) {
		return services.Wrap(services.ErrValidation, "preflight", "check-deck",
			"deck is read-only; use audio-only mode or open it in an editable host", nil)
	}
	if !c.opts.SkipBinaryCheck {
		if status := deps.CheckFFmpeg(c.opts.Config.Transcode.FFmpegBinary); !status.Available {
			return services.Wrap(services.ErrValidation, "preflight", "check-ffmpeg", status.Detail, nil)
		}
	}
	return nil
}

// acquireLock takes the per-deck run lock so no two runs mutate the same
// document concurrently.
func (c *Controller) acquireLock() (*flock.Flock, error) {
	name := strings.TrimSuffix(filepath.Base(c.opts.Deck.Path()), filepath.Ext(c.opts.Deck.Path()))
	if name == "" {
		name = "deck"
	}
	lockPath := filepath.Join(c.opts.Config.Paths.StateDir, name+".lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrProcess, "preflight", "acquire-lock", "acquire run lock", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "preflight", "acquire-lock",
			fmt.Sprintf("another run is already narrating %s", filepath.Base(c.opts.Deck.Path())), nil)
	}
	return lock, nil
}

// captureSnapshots batches the animation snapshots for every selected
// slide before any timeline is mutated, so a later slide's processing
// cannot corrupt an earlier slide's backup. Audio-only runs never touch
// timelines and skip the capture.
func (c *Controller) captureSnapshots(selected []int) (map[int]*anim.Snapshot, error) {
	snapshots := make(map[int]*anim.Snapshot, len(selected))
	if c.opts.Config.Run.AudioOnly {
		return snapshots, nil
	}
	for _, number := range selected {
		slide, err := c.opts.Deck.Slide(number)
		if err != nil {
			return nil, services.Wrap(services.ErrFatalHost, "snapshot", "open-slide",
				fmt.Sprintf("open slide %d", number), err)
		}
		snap, err := c.engine.Take(slide)
		if err != nil {
			return nil, err
		}
		snapshots[number] = snap
	}
	return snapshots, nil
}

func (c *Controller) emit(out attach.Outcome) {
	if c.opts.Events == nil {
		return
	}
	event := Event{RunID: c.runID, Slide: out.Slide, Status: out.Status}
	switch {
	case out.Err != nil:
		event.Message = out.Err.Error()
	case out.Reason != "":
		event.Message = out.Reason
	case out.AudioFile != "":
		event.Message = filepath.Base(out.AudioFile)
	}
	select {
	case c.opts.Events <- event:
	default:
	}
}
