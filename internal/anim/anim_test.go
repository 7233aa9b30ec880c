package anim_test

import (
	"strings"
	"testing"

	"voxsmith/internal/anim"
	"voxsmith/internal/deck"
	"voxsmith/internal/deck/memdeck"
)

func intPtr(n int) *int { return &n }

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	d := memdeck.New("talk.pptx")
	slide := d.AddSlide("notes",
		deck.Shape{ID: 1, Name: "Title 1", Title: true},
		deck.Shape{ID: 2, Name: "Body"},
		deck.Shape{ID: 3, Name: "Chart"},
	)
	slide.TimelineRef().SetEffects(
		deck.Effect{ShapeID: 2, ShapeName: "Body", Category: deck.CategoryEntrance, Trigger: deck.TriggerOnClick},
		deck.Effect{ShapeID: 3, ShapeName: "Chart", Category: deck.CategoryEmphasis, Trigger: deck.TriggerWithPrevious},
		deck.Effect{ShapeID: 2, ShapeName: "Body", Category: deck.CategoryExit, Trigger: deck.TriggerAfterPrevious},
	)

	engine := anim.NewEngine(nil)
	snap, err := engine.Take(slide)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if len(snap.Effects) != 3 {
		t.Fatalf("captured %d effects, want 3", len(snap.Effects))
	}
	if skip, _ := anim.ShouldSkipAttachment(snap); skip {
		t.Fatal("no text animations, should not skip")
	}

	audioShape, err := slide.InsertAudio("slide01.wav")
	if err != nil {
		t.Fatalf("InsertAudio failed: %v", err)
	}
	if err := engine.Restore(slide, snap, audioShape); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	effects, err := slide.Timeline().Effects()
	if err != nil {
		t.Fatalf("Effects failed: %v", err)
	}
	if len(effects) != 4 {
		t.Fatalf("timeline has %d effects, want 4", len(effects))
	}
	last := effects[len(effects)-1]
	if last.ShapeID != audioShape.ID || last.Category != deck.CategoryMediaPlay {
		t.Fatalf("last effect = %+v, want media-play on audio shape", last)
	}
	if last.Trigger != deck.TriggerAfterPrevious || !last.Hidden {
		t.Fatalf("audio effect = %+v, want hidden after-previous", last)
	}
	for i, effect := range effects[:3] {
		if effect.ShapeID != snap.Effects[i].ShapeID || effect.Category != snap.Effects[i].Category {
			t.Fatalf("effect %d replayed out of order: %+v", i, effect)
		}
	}
}

func TestTakeRemovesOrphanedEffects(t *testing.T) {
	d := memdeck.New("talk.pptx")
	slide := d.AddSlide("notes",
		deck.Shape{ID: 2, Name: "Body"},
		deck.Shape{ID: 9001, Name: "Narration slide01", Audio: true},
	)
	slide.TimelineRef().SetEffects(
		deck.Effect{ShapeID: 2, ShapeName: "Body", Category: deck.CategoryEntrance},
		deck.Effect{ShapeID: 77, ShapeName: "Deleted shape", Category: deck.CategoryEntrance},
		deck.Effect{ShapeID: 9001, ShapeName: "Narration slide01", Category: deck.CategoryMediaPlay},
	)

	engine := anim.NewEngine(nil)
	snap, err := engine.Take(slide)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if len(snap.Effects) != 1 || snap.Effects[0].ShapeID != 2 {
		t.Fatalf("snapshot effects = %+v, want only the live body effect", snap.Effects)
	}

	effects, _ := slide.Timeline().Effects()
	if len(effects) != 1 {
		t.Fatalf("live timeline has %d effects after pruning, want 1", len(effects))
	}
}

func TestTakeExcludesMediaPlayFromCapture(t *testing.T) {
	d := memdeck.New("talk.pptx")
	slide := d.AddSlide("notes",
		deck.Shape{ID: 2, Name: "Body"},
		deck.Shape{ID: 5, Name: "Video"},
	)
	slide.TimelineRef().SetEffects(
		deck.Effect{ShapeID: 5, ShapeName: "Video", Category: deck.CategoryMediaPlay},
		deck.Effect{ShapeID: 2, ShapeName: "Body", Category: deck.CategoryEntrance},
	)

	snap, err := anim.NewEngine(nil).Take(slide)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if len(snap.Effects) != 1 || snap.Effects[0].Category != deck.CategoryEntrance {
		t.Fatalf("snapshot effects = %+v", snap.Effects)
	}
}

func TestShouldSkipAttachment(t *testing.T) {
	if skip, _ := anim.ShouldSkipAttachment(nil); skip {
		t.Fatal("nil snapshot should not skip")
	}
	if skip, _ := anim.ShouldSkipAttachment(&anim.Snapshot{}); skip {
		t.Fatal("empty snapshot should not skip")
	}

	d := memdeck.New("talk.pptx")
	slide := d.AddSlide("notes", deck.Shape{ID: 2, Name: "Bullets"})
	slide.TimelineRef().SetEffects(
		deck.Effect{ShapeID: 2, ShapeName: "Bullets", Category: deck.CategoryEntrance, Paragraph: intPtr(1)},
	)

	snap, err := anim.NewEngine(nil).Take(slide)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	skip, reason := anim.ShouldSkipAttachment(snap)
	if !skip {
		t.Fatal("paragraph animation should skip attachment")
	}
	if !strings.Contains(reason, "Bullets") {
		t.Fatalf("reason = %q, want shape name", reason)
	}
}

func TestRestoreSkipsTextAndMissingShapes(t *testing.T) {
	d := memdeck.New("talk.pptx")
	slide := d.AddSlide("notes",
		deck.Shape{ID: 2, Name: "Body"},
	)

	snap := &anim.Snapshot{
		SlideNumber: 1,
		Effects: []deck.Effect{
			{ShapeID: 2, ShapeName: "Body", Category: deck.CategoryEntrance},
			{ShapeID: 2, ShapeName: "Body", Category: deck.CategoryEntrance, TextUnit: intPtr(0)},
			{ShapeID: 99, ShapeName: "Gone", Category: deck.CategoryExit},
		},
	}

	audioShape, err := slide.InsertAudio("slide01.wav")
	if err != nil {
		t.Fatalf("InsertAudio failed: %v", err)
	}
	if err := anim.NewEngine(nil).Restore(slide, snap, audioShape); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	effects, _ := slide.Timeline().Effects()
	if len(effects) != 2 {
		t.Fatalf("timeline has %d effects, want entrance + audio", len(effects))
	}
	if effects[0].ShapeID != 2 || effects[0].TextUnit != nil {
		t.Fatalf("first effect = %+v", effects[0])
	}
	if effects[1].Category != deck.CategoryMediaPlay {
		t.Fatalf("second effect = %+v, want media-play", effects[1])
	}
}

func TestRestoreEmptySnapshotAddsOnlyAudioEffect(t *testing.T) {
	d := memdeck.New("talk.pptx")
	slide := d.AddSlide("notes")

	audioShape, err := slide.InsertAudio("slide01.wav")
	if err != nil {
		t.Fatalf("InsertAudio failed: %v", err)
	}
	if err := anim.NewEngine(nil).Restore(slide, nil, audioShape); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	effects, _ := slide.Timeline().Effects()
	if len(effects) != 1 || effects[0].Category != deck.CategoryMediaPlay {
		t.Fatalf("effects = %+v, want single media-play", effects)
	}
}
