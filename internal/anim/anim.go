// Package anim captures and replays a slide's animation timeline around
// an audio insertion.
//
// Inserting media causes the document host to append and reorder timeline
// entries as a side effect, so the attach sequence snapshots the timeline
// first, clears it, inserts the audio shape, and replays the snapshot with
// the new audio effect in front. Text-content animations cannot be
// replayed safely after media insertion and force the slide into
// audio-only handling.
package anim

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"voxsmith/internal/deck"
	"voxsmith/internal/logging"
	"voxsmith/internal/services"
)

// Snapshot is an immutable capture of a slide's timeline taken before any
// mutation. Consumed exactly once during restore.
type Snapshot struct {
	SlideNumber int
	Effects     []deck.Effect

	// HasTextAnimations marks snapshots that contain per-text-unit or
	// per-paragraph effects. Those slides must not have audio attached
	// automatically.
	HasTextAnimations   bool
	TextAnimationShapes []string
}

// Engine walks, prunes, and replays slide timelines.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{logger: logger.With(logging.String(logging.FieldComponent, "anim"))}
}

// Take captures the slide's timeline. Orphaned effects, those whose
// target shape no longer exists or targets a narration audio shape left
// by a prior run, are removed from the live timeline and excluded from
// the capture. Media-play effects are never captured: the restore adds
// its own audio effect and stale ones would double-play.
func (e *Engine) Take(slide deck.Slide) (*Snapshot, error) {
	shapes, err := slide.Shapes()
	if err != nil {
		return nil, services.Wrap(services.ErrProcess, "snapshot", "list-shapes", "read slide shapes", err)
	}
	present := make(map[int64]deck.Shape, len(shapes))
	for _, shape := range shapes {
		present[shape.ID] = shape
	}

	timeline := slide.Timeline()
	effects, err := timeline.Effects()
	if err != nil {
		return nil, services.Wrap(services.ErrProcess, "snapshot", "read-timeline", "read slide timeline", err)
	}

	// Prune backwards so removals do not shift pending indices.
	for i := len(effects) - 1; i >= 0; i-- {
		shape, exists := present[effects[i].ShapeID]
		if exists && !shape.Audio {
			continue
		}
		if err := timeline.Remove(i); err != nil {
			return nil, services.Wrap(services.ErrProcess, "snapshot", "prune-timeline",
				fmt.Sprintf("remove orphaned effect %d", i), err)
		}
		e.logger.Debug("removed orphaned timeline effect",
			logging.Int(logging.FieldSlide, slide.Number()),
			logging.String("shape", effects[i].ShapeName))
	}

	effects, err = timeline.Effects()
	if err != nil {
		return nil, services.Wrap(services.ErrProcess, "snapshot", "read-timeline", "reread slide timeline", err)
	}

	snap := &Snapshot{SlideNumber: slide.Number()}
	textShapes := make(map[string]struct{})
	for _, effect := range effects {
		if effect.Category == deck.CategoryMediaPlay {
			continue
		}
		if effect.IsTextAnimation() {
			snap.HasTextAnimations = true
			textShapes[effect.ShapeName] = struct{}{}
		}
		snap.Effects = append(snap.Effects, effect)
	}
	for name := range textShapes {
		snap.TextAnimationShapes = append(snap.TextAnimationShapes, name)
	}
	sort.Strings(snap.TextAnimationShapes)
	return snap, nil
}

// ShouldSkipAttachment reports whether attaching audio to the snapshotted
// slide would break its animations, with a human-readable reason.
func ShouldSkipAttachment(snap *Snapshot) (bool, string) {
	if snap == nil || !snap.HasTextAnimations {
		return false, ""
	}
	if len(snap.TextAnimationShapes) == 0 {
		return true, "slide has text animations"
	}
	return true, "slide has text animations on " + strings.Join(snap.TextAnimationShapes, ", ")
}

// Restore rebuilds the slide's timeline from the snapshot: the timeline
// is cleared, the captured effects are replayed in their original order,
// and a hidden play-after-previous effect for the new audio shape is
// appended last. Effects whose shape disappeared and text-content
// effects are skipped during replay. A mid-replay failure leaves a valid
// timeline, just with fewer animations, and is reported as a per-slide
// restoration failure. An empty snapshot degenerates to adding the one
// audio effect.
func (e *Engine) Restore(slide deck.Slide, snap *Snapshot, audioShape deck.Shape) error {
	timeline := slide.Timeline()
	if err := timeline.Clear(); err != nil {
		return services.Wrap(services.ErrProcess, "restore", "clear-timeline", "clear slide timeline", err)
	}

	if snap != nil && len(snap.Effects) > 0 {
		shapes, err := slide.Shapes()
		if err != nil {
			return services.Wrap(services.ErrProcess, "restore", "list-shapes", "read slide shapes", err)
		}
		present := make(map[int64]struct{}, len(shapes))
		for _, shape := range shapes {
			present[shape.ID] = struct{}{}
		}

		for _, effect := range snap.Effects {
			if effect.IsTextAnimation() {
				e.logger.Debug("skipping text animation during replay",
					logging.Int(logging.FieldSlide, slide.Number()),
					logging.String("shape", effect.ShapeName))
				continue
			}
			if _, ok := present[effect.ShapeID]; !ok {
				e.logger.Debug("skipping effect for missing shape",
					logging.Int(logging.FieldSlide, slide.Number()),
					logging.String("shape", effect.ShapeName))
				continue
			}
			if err := timeline.Add(effect); err != nil {
				return services.Wrap(services.ErrProcess, "restore", "replay-effect",
					fmt.Sprintf("replay effect for shape %q", effect.ShapeName), err)
			}
		}
	}

	audioEffect := deck.Effect{
		ShapeID:   audioShape.ID,
		ShapeName: audioShape.Name,
		Category:  deck.CategoryMediaPlay,
		Trigger:   deck.TriggerAfterPrevious,
		Hidden:    true,
	}
	if err := timeline.Add(audioEffect); err != nil {
		return services.Wrap(services.ErrProcess, "restore", "add-audio-effect", "add narration play effect", err)
	}
	return nil
}
