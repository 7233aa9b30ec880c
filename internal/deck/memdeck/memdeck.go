// Package memdeck implements an in-memory deck with mutable timelines. It
// backs orchestrator and animation tests and simulates host failure modes.
package memdeck

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"voxsmith/internal/deck"
)

// Deck is an in-memory implementation of deck.Deck.
type Deck struct {
	mu     sync.Mutex
	path   string
	slides []*Slide

	// SaveErr, when set, is returned by Save.
	SaveErr error

	saveCount int
}

// New creates an empty in-memory deck.
func New(path string) *Deck {
	return &Deck{path: path}
}

// AddSlide appends a slide and returns it for further setup.
func (d *Deck) AddSlide(notes string, shapes ...deck.Shape) *Slide {
	d.mu.Lock()
	defer d.mu.Unlock()
	slide := &Slide{
		deck:   d,
		number: len(d.slides) + 1,
		notes:  notes,
		shapes: append([]deck.Shape(nil), shapes...),
	}
	d.slides = append(d.slides, slide)
	return slide
}

func (d *Deck) Path() string { return d.path }

func (d *Deck) SlideCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.slides)
}

func (d *Deck) Slide(number int) (deck.Slide, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if number < 1 || number > len(d.slides) {
		return nil, fmt.Errorf("slide %d out of range [1,%d]", number, len(d.slides))
	}
	return d.slides[number-1], nil
}

func (d *Deck) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SaveErr != nil {
		return d.SaveErr
	}
	d.saveCount++
	return nil
}

func (d *Deck) Close() error { return nil }

// SaveCount reports how many times Save succeeded.
func (d *Deck) SaveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveCount
}

// Slide is an in-memory implementation of deck.Slide.
type Slide struct {
	deck   *Deck
	number int
	notes  string
	shapes []deck.Shape

	timeline Timeline

	// InsertErr, when set, is returned by InsertAudio.
	InsertErr error

	nextShapeID int64
	inserted    int
}

func (s *Slide) Number() int { return s.number }

func (s *Slide) Notes() (string, error) { return s.notes, nil }

func (s *Slide) Shapes() ([]deck.Shape, error) {
	return append([]deck.Shape(nil), s.shapes...), nil
}

func (s *Slide) Timeline() deck.Timeline { return &s.timeline }

// TimelineRef exposes the concrete timeline for test setup, for
// SetEffects and the failure-injection fields.
func (s *Slide) TimelineRef() *Timeline { return &s.timeline }

func (s *Slide) InsertAudio(path string) (deck.Shape, error) {
	if s.InsertErr != nil {
		return deck.Shape{}, s.InsertErr
	}
	s.inserted++
	s.nextShapeID++
	shape := deck.Shape{
		ID:    9000 + s.nextShapeID,
		Name:  fmt.Sprintf("Narration %s", filepath.Base(path)),
		Audio: true,
	}
	s.shapes = append(s.shapes, shape)
	return shape, nil
}

// RemoveShape drops a shape by id, simulating a user deletion that leaves
// orphaned timeline effects behind.
func (s *Slide) RemoveShape(id int64) {
	kept := s.shapes[:0]
	for _, shape := range s.shapes {
		if shape.ID != id {
			kept = append(kept, shape)
		}
	}
	s.shapes = kept
}

// SetNotes replaces the slide's notes text.
func (s *Slide) SetNotes(notes string) { s.notes = notes }

// Timeline is an in-memory implementation of deck.Timeline.
type Timeline struct {
	effects []deck.Effect

	// AddErrAfter fails Add once the timeline holds that many effects.
	// Zero means never fail.
	AddErrAfter int
}

func (t *Timeline) Effects() ([]deck.Effect, error) {
	return append([]deck.Effect(nil), t.effects...), nil
}

func (t *Timeline) Clear() error {
	t.effects = nil
	return nil
}

func (t *Timeline) Add(effect deck.Effect) error {
	if t.AddErrAfter > 0 && len(t.effects) >= t.AddErrAfter {
		return errors.New("timeline add rejected by host")
	}
	t.effects = append(t.effects, effect)
	return nil
}

func (t *Timeline) Remove(index int) error {
	if index < 0 || index >= len(t.effects) {
		return fmt.Errorf("effect index %d out of range", index)
	}
	t.effects = append(t.effects[:index], t.effects[index+1:]...)
	return nil
}

// SetEffects replaces the timeline contents for test setup.
func (t *Timeline) SetEffects(effects ...deck.Effect) {
	t.effects = append([]deck.Effect(nil), effects...)
}
