// Package notes turns raw speaker notes into the text that is read aloud.
//
// Notes may embed a read-slide marker anywhere in the text. The resolver
// replaces every occurrence with the slide's visible body text, gathered
// in visual reading order. The marker match is case-insensitive.
package notes

import (
	"log/slog"
	"sort"
	"strings"

	"voxsmith/internal/deck"
	"voxsmith/internal/logging"
)

// DefaultMarker is substituted with slide body text when found in notes.
const DefaultMarker = "[[ReadSlide]]"

type Resolver struct {
	marker string
	logger *slog.Logger
}

func NewResolver(marker string, logger *slog.Logger) *Resolver {
	if marker == "" {
		marker = DefaultMarker
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{marker: marker, logger: logger.With(logging.String(logging.FieldComponent, "notes"))}
}

// Resolve produces the final narration text for a slide. An empty result
// means the slide has nothing to narrate and should be skipped by the
// caller. The marker is never left in the returned text: when the slide
// has no extractable body text the marker is dropped and a warning is
// logged instead.
func (r *Resolver) Resolve(slide deck.Slide) (string, error) {
	raw, err := slide.Notes()
	if err != nil {
		return "", err
	}
	if !containsMarker(raw, r.marker) {
		return strings.TrimSpace(raw), nil
	}

	shapes, err := slide.Shapes()
	if err != nil {
		return "", err
	}
	body := slideBodyText(shapes)
	if body == "" {
		r.logger.Warn("read-slide marker found but slide has no extractable text",
			logging.Int(logging.FieldSlide, slide.Number()))
	}
	return strings.TrimSpace(replaceMarker(raw, r.marker, body)), nil
}

// slideBodyText concatenates non-title, non-audio shape text in visual
// reading order, top to bottom and then left to right.
func slideBodyText(shapes []deck.Shape) string {
	readable := make([]deck.Shape, 0, len(shapes))
	for _, shape := range shapes {
		if shape.Title || shape.Audio {
			continue
		}
		if strings.TrimSpace(shape.Text) == "" {
			continue
		}
		readable = append(readable, shape)
	}
	sort.SliceStable(readable, func(i, j int) bool {
		if readable[i].Top != readable[j].Top {
			return readable[i].Top < readable[j].Top
		}
		return readable[i].Left < readable[j].Left
	})

	parts := make([]string, 0, len(readable))
	for _, shape := range readable {
		parts = append(parts, strings.TrimSpace(shape.Text))
	}
	return strings.Join(parts, "\n")
}

func containsMarker(text, marker string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(marker))
}

// replaceMarker substitutes every case-insensitive occurrence of marker.
func replaceMarker(text, marker, replacement string) string {
	lowerMarker := strings.ToLower(marker)
	var b strings.Builder
	for {
		idx := strings.Index(strings.ToLower(text), lowerMarker)
		if idx < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:idx])
		b.WriteString(replacement)
		text = text[idx+len(marker):]
	}
}
