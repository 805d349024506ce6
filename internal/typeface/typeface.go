// Package typeface loads the fonts used for sticker glyphs and template
// chrome. The Go font family is embedded; a custom TTF/OTF can replace the
// sticker face (for example an emoji font).
package typeface

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Style picks one embedded face.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
	Mono
	MonoBold
	styleCount
)

var embedded = [styleCount][]byte{
	Regular:    goregular.TTF,
	Bold:       gobold.TTF,
	Italic:     goitalic.TTF,
	BoldItalic: gobolditalic.TTF,
	Mono:       gomono.TTF,
	MonoBold:   gomonobold.TTF,
}

// Manager holds parsed fonts. Parsed fonts are safe for concurrent use;
// faces are not, so Face returns a fresh one per call.
type Manager struct {
	fonts     [styleCount]*opentype.Font
	glyphs    *opentype.Font
	glyphName string
}

// New parses the embedded fonts. If glyphPath is non-empty that font is
// used for sticker glyphs; a file that cannot be read or parsed is an error.
func New(glyphPath string) (*Manager, error) {
	m := &Manager{}
	for s, data := range embedded {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse embedded font %d: %w", s, err)
		}
		m.fonts[s] = f
	}
	m.glyphs, m.glyphName = m.fonts[Regular], "Go Regular"

	if glyphPath != "" {
		data, err := os.ReadFile(glyphPath)
		if err != nil {
			return nil, fmt.Errorf("read glyph font: %w", err)
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse glyph font %s: %w", glyphPath, err)
		}
		m.glyphs, m.glyphName = f, filepath.Base(glyphPath)
	}
	return m, nil
}

// GlyphFontName names the sticker font for messages.
func (m *Manager) GlyphFontName() string { return m.glyphName }

// MissingGlyphs returns the runes of text the sticker font has no glyph
// for, in order of first appearance. Variation selectors are ignored.
func (m *Manager) MissingGlyphs(text string) []rune {
	var (
		buf     sfnt.Buffer
		missing []rune
		seen    = map[rune]bool{}
	)
	for _, r := range StripVariation(text) {
		if seen[r] {
			continue
		}
		seen[r] = true
		if idx, err := m.glyphs.GlyphIndex(&buf, r); err != nil || idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing
}

// StripVariation drops the text and emoji presentation selectors
// (U+FE0E, U+FE0F); they carry no glyph of their own.
func StripVariation(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\uFE0E' || r == '\uFE0F' {
			return -1
		}
		return r
	}, text)
}

// Face returns a face of the given style at size pixels (72 DPI).
func (m *Manager) Face(s Style, size float64) (font.Face, error) {
	if s < 0 || s >= styleCount {
		s = Regular
	}
	return newFace(m.fonts[s], size)
}

// GlyphFace returns the sticker face at size pixels.
func (m *Manager) GlyphFace(size float64) (font.Face, error) {
	return newFace(m.glyphs, size)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}
