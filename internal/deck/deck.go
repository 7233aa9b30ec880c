package deck

import "errors"

// ErrReadOnly is returned by adapters that cannot mutate the document.
var ErrReadOnly = errors.New("deck is read-only")

// EffectCategory classifies a timeline entry.
type EffectCategory string

const (
	CategoryEntrance   EffectCategory = "entrance"
	CategoryExit       EffectCategory = "exit"
	CategoryEmphasis   EffectCategory = "emphasis"
	CategoryMotionPath EffectCategory = "motion-path"
	// CategoryMediaPlay marks audio/video playback effects, including the
	// narration effect this tool inserts.
	CategoryMediaPlay EffectCategory = "media-play"
)

// Trigger describes how a timeline entry starts.
type Trigger string

const (
	TriggerOnClick       Trigger = "on-click"
	TriggerWithPrevious  Trigger = "with-previous"
	TriggerAfterPrevious Trigger = "after-previous"
)

// Shape is a lightweight view of one slide shape.
type Shape struct {
	ID    int64
	Name  string
	Title bool
	// Audio marks shapes created by narration insertion.
	Audio bool
	Text  string
	// Top and Left position the shape in EMU-like units; only relative order
	// matters to the reading-order sort.
	Top  float64
	Left float64
}

// Effect is one animation timeline entry.
type Effect struct {
	ShapeID   int64
	ShapeName string
	Category  EffectCategory
	Trigger   Trigger
	Delay     float64
	Duration  float64
	// TextUnit and Paragraph are set for text-content animations (by
	// paragraph, word, or letter). Such effects cannot be replayed after
	// media insertion.
	TextUnit  *int
	Paragraph *int
	// Hidden hides the effect's shape icon during the show; used for the
	// inserted narration playback effect.
	Hidden bool
}

// IsTextAnimation reports whether the effect animates text content.
func (e Effect) IsTextAnimation() bool {
	return e.TextUnit != nil || e.Paragraph != nil
}

// Timeline provides ordered access to a slide's animation effects.
type Timeline interface {
	Effects() ([]Effect, error)
	Clear() error
	Add(Effect) error
	// Remove deletes the effect at the given zero-based index.
	Remove(index int) error
}

// Slide is one slide of an open deck.
type Slide interface {
	Number() int
	Notes() (string, error)
	Shapes() ([]Shape, error)
	Timeline() Timeline
	// InsertAudio embeds the audio file on the slide and returns the new shape.
	InsertAudio(path string) (Shape, error)
}

// Deck is an open handle to a presentation document.
type Deck interface {
	Path() string
	SlideCount() int
	// Slide returns the slide at the given 1-based position.
	Slide(number int) (Slide, error)
	Save() error
	// Close releases the handle; the document stays open for user review in
	// hosts that work that way.
	Close() error
}

// Mutable reports whether the deck supports document mutation. Read-only
// adapters drive audio-only runs.
func Mutable(d Deck) bool {
	type readOnly interface{ ReadOnly() bool }
	if ro, ok := d.(readOnly); ok {
		return !ro.ReadOnly()
	}
	return true
}
