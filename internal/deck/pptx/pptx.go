// Package pptx opens .pptx packages read-only, exposing per-slide notes text
// and shape text/position for audio-only narration runs. Mutating operations
// return deck.ErrReadOnly.
package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"voxsmith/internal/deck"
)

const relNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Deck is a read-only deck over a .pptx package.
type Deck struct {
	path   string
	reader *zip.ReadCloser
	slides []*slide
}

// Open reads the package structure and resolves slide order.
func Open(filePath string) (*Deck, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}

	d := &Deck{path: filePath, reader: reader}
	if err := d.load(); err != nil {
		_ = reader.Close()
		return nil, err
	}
	return d, nil
}

func (d *Deck) Path() string { return d.path }

func (d *Deck) SlideCount() int { return len(d.slides) }

func (d *Deck) Slide(number int) (deck.Slide, error) {
	if number < 1 || number > len(d.slides) {
		return nil, fmt.Errorf("slide %d out of range [1,%d]", number, len(d.slides))
	}
	return d.slides[number-1], nil
}

// Save is unsupported; the adapter never mutates the package.
func (d *Deck) Save() error { return deck.ErrReadOnly }

func (d *Deck) Close() error { return d.reader.Close() }

// ReadOnly marks the adapter for deck.Mutable.
func (d *Deck) ReadOnly() bool { return true }

type slide struct {
	number   int
	notes    string
	shapes   []deck.Shape
	timeline readOnlyTimeline
}

func (s *slide) Number() int { return s.number }

func (s *slide) Notes() (string, error) { return s.notes, nil }

func (s *slide) Shapes() ([]deck.Shape, error) {
	return append([]deck.Shape(nil), s.shapes...), nil
}

func (s *slide) Timeline() deck.Timeline { return &s.timeline }

func (s *slide) InsertAudio(string) (deck.Shape, error) {
	return deck.Shape{}, deck.ErrReadOnly
}

type readOnlyTimeline struct{}

func (readOnlyTimeline) Effects() ([]deck.Effect, error) { return nil, nil }

func (readOnlyTimeline) Clear() error { return deck.ErrReadOnly }

func (readOnlyTimeline) Add(deck.Effect) error { return deck.ErrReadOnly }

func (readOnlyTimeline) Remove(int) error { return deck.ErrReadOnly }

// --- package parsing ---

type presentationXML struct {
	SlideIDs []struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type slideXML struct {
	Shapes []shapeXML `xml:"cSld>spTree>sp"`
}

type shapeXML struct {
	NonVisual struct {
		Props struct {
			ID   int64  `xml:"id,attr"`
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
		Placeholder struct {
			Type string `xml:"type,attr"`
		} `xml:"nvPr>ph"`
	} `xml:"nvSpPr"`
	Offset struct {
		X float64 `xml:"x,attr"`
		Y float64 `xml:"y,attr"`
	} `xml:"spPr>xfrm>off"`
	Paragraphs []struct {
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"txBody>p"`
}

func (d *Deck) load() error {
	presData, err := d.readEntry("ppt/presentation.xml")
	if err != nil {
		return err
	}
	var pres presentationXML
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return fmt.Errorf("parse presentation.xml: %w", err)
	}

	rels, err := d.readRelationships("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return err
	}

	for i, entry := range pres.SlideIDs {
		rel, ok := rels[entry.RelID]
		if !ok {
			return fmt.Errorf("slide relationship %q not found", entry.RelID)
		}
		slidePath := resolveTarget("ppt", rel.target)
		s, err := d.loadSlide(i+1, slidePath)
		if err != nil {
			return err
		}
		d.slides = append(d.slides, s)
	}
	return nil
}

func (d *Deck) loadSlide(number int, slidePath string) (*slide, error) {
	data, err := d.readEntry(slidePath)
	if err != nil {
		return nil, err
	}
	var parsed slideXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", slidePath, err)
	}

	s := &slide{number: number}
	for _, shape := range parsed.Shapes {
		s.shapes = append(s.shapes, deck.Shape{
			ID:    shape.NonVisual.Props.ID,
			Name:  shape.NonVisual.Props.Name,
			Title: isTitlePlaceholder(shape.NonVisual.Placeholder.Type),
			Text:  shapeText(shape),
			Top:   shape.Offset.Y,
			Left:  shape.Offset.X,
		})
	}

	notes, err := d.loadNotes(slidePath)
	if err != nil {
		return nil, err
	}
	s.notes = notes
	return s, nil
}

func (d *Deck) loadNotes(slidePath string) (string, error) {
	relsPath := path.Join(path.Dir(slidePath), "_rels", path.Base(slidePath)+".rels")
	rels, err := d.readRelationships(relsPath)
	if err != nil {
		// Slides without relationships have no notes.
		return "", nil
	}

	var notesTarget string
	for _, rel := range rels {
		if rel.relType == relNS+"/notesSlide" {
			notesTarget = rel.target
			break
		}
	}
	if notesTarget == "" {
		return "", nil
	}

	notesPath := resolveTarget(path.Dir(slidePath), notesTarget)
	data, err := d.readEntry(notesPath)
	if err != nil {
		return "", err
	}
	var parsed slideXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse %s: %w", notesPath, err)
	}

	var parts []string
	for _, shape := range parsed.Shapes {
		// Notes text lives in the body placeholder; skip slide images and
		// slide-number placeholders.
		if shape.NonVisual.Placeholder.Type != "body" {
			continue
		}
		if text := shapeText(shape); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// relationship is one resolved entry of a .rels part.
type relationship struct {
	relType string
	target  string
}

func (d *Deck) readRelationships(entryPath string) (map[string]relationship, error) {
	data, err := d.readEntry(entryPath)
	if err != nil {
		return nil, err
	}
	var parsed relationshipsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", entryPath, err)
	}
	rels := make(map[string]relationship, len(parsed.Relationships))
	for _, rel := range parsed.Relationships {
		rels[rel.ID] = relationship{relType: rel.Type, target: rel.Target}
	}
	return rels, nil
}

func (d *Deck) readEntry(name string) ([]byte, error) {
	for _, file := range d.reader.File {
		if file.Name == name {
			rc, err := file.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("pptx entry %s not found", name)
}

func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	resolved := path.Join(baseDir, target)
	return path.Clean(resolved)
}

func isTitlePlaceholder(phType string) bool {
	switch phType {
	case "title", "ctrTitle", "subTitle":
		return true
	default:
		return false
	}
}

func shapeText(shape shapeXML) string {
	var paragraphs []string
	for _, paragraph := range shape.Paragraphs {
		var runs []string
		for _, run := range paragraph.Runs {
			if run.Text != "" {
				runs = append(runs, run.Text)
			}
		}
		if joined := strings.Join(runs, ""); strings.TrimSpace(joined) != "" {
			paragraphs = append(paragraphs, joined)
		}
	}
	return strings.Join(paragraphs, "\n")
}
