// Package compose bakes a shot's decoration into its raster: color filter,
// overlay effect, then stickers, in that order.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/momento/internal/effect"
	"github.com/AnyUserName/momento/internal/filter"
	"github.com/AnyUserName/momento/internal/frame"
	"github.com/AnyUserName/momento/internal/typeface"
)

// GlyphScale is the sticker glyph size as a fraction of the frame width at
// scale 1.
const GlyphScale = 0.15

// StickerGlyphs is the sticker palette the embedded Go Regular face can
// draw.
var StickerGlyphs = []string{
	"♥", "☺", "☻", "☼", "♪", "♫", "♠", "♣",
	"♦", "♀", "♂", "●", "▲", "►", "∞", "‼",
}

// EmojiGlyphs is the booth's emoji palette. It needs a glyph font with
// emoji coverage (typeface.New with a path, --font on the CLI).
var EmojiGlyphs = []string{
	"✌️", "❤️", "🔥", "✨", "😎", "🎀", "👑", "🐶",
	"💀", "👽", "🦋", "🌸", "🍕", "🥂", "📸", "🌈", "⚡️", "💯", "🎉", "💩", "👻", "👀",
}

var (
	// ErrMissingGlyph is returned for a sticker the glyph font cannot draw.
	ErrMissingGlyph = errors.New("compose: glyph not in sticker font")
	// ErrPlacement is returned for a sticker with a non-finite placement.
	ErrPlacement = errors.New("compose: sticker placement is not finite")
)

// Compositor renders decorated shots. It is safe for concurrent use.
type Compositor struct {
	fonts      *typeface.Manager
	glyphColor color.Color
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithGlyphColor sets the fill used for monochrome sticker glyphs.
func WithGlyphColor(c color.Color) Option {
	return func(cp *Compositor) { cp.glyphColor = c }
}

// New creates a compositor drawing stickers with fonts.
func New(fonts *typeface.Manager, opts ...Option) *Compositor {
	c := &Compositor{fonts: fonts, glyphColor: color.Black}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Composite returns a new raster of the same size as buf with every
// decoration layer baked in. The result depends only on buf.
func (c *Compositor) Composite(buf *frame.PixelBuffer) (*image.NRGBA, error) {
	if buf == nil || buf.Width() <= 0 || buf.Height() <= 0 {
		return nil, frame.ErrEmptyRaster
	}
	deco := buf.Decoration()

	flt, err := filter.Get(deco.Filter)
	if err != nil {
		return nil, err
	}
	eff, err := effect.Get(deco.Effect)
	if err != nil {
		return nil, err
	}

	// Filter.Apply always returns a fresh raster, so the buffer's own
	// pixels are never touched.
	img := flt.Apply(buf.Image())
	if eff.Kind != effect.None {
		img = eff.Apply(img)
	}

	for i, s := range deco.Stickers {
		if err := c.drawSticker(img, s); err != nil {
			return nil, fmt.Errorf("sticker %d: %w", i, err)
		}
	}
	return img, nil
}

// StickerCenter maps a preview-space placement to raster pixels. The
// preview is mirrored relative to the stored raster, so x is inverted.
func StickerCenter(s frame.Sticker, w, h int) (float64, float64) {
	return (1 - s.X) * float64(w), s.Y * float64(h)
}

func (c *Compositor) drawSticker(dst *image.NRGBA, s frame.Sticker) error {
	for _, v := range []float64{s.X, s.Y, s.Scale, s.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %+v", ErrPlacement, s)
		}
	}
	glyph := typeface.StripVariation(s.Glyph)
	if glyph == "" {
		return nil
	}
	if missing := c.fonts.MissingGlyphs(glyph); len(missing) > 0 {
		return fmt.Errorf("%w: %q (U+%04X) in %s", ErrMissingGlyph, s.Glyph, missing[0], c.fonts.GlyphFontName())
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	size := GlyphScale * float64(w) * s.Scale
	cx, cy := StickerCenter(s, w, h)

	face, err := c.fonts.GlyphFace(size)
	if err != nil {
		return err
	}
	defer face.Close()

	rot := math.Mod(s.Rotation, 360)
	if rot == 0 {
		typeface.DrawCentered(dst, face, glyph, cx, cy, c.glyphColor)
		return nil
	}

	// Render on a transparent tile large enough for any rotation, then
	// turn the tile around its center and paste it over the frame.
	iw, ih := typeface.InkSize(face, glyph)
	side := int(math.Ceil(math.Hypot(iw, ih))) + 4
	tile := image.NewNRGBA(image.Rect(0, 0, side, side))
	typeface.DrawCentered(tile, face, glyph, float64(side)/2, float64(side)/2, c.glyphColor)

	// imaging rotates counter-clockwise; sticker rotation is clockwise on
	// screen.
	turned := imaging.Rotate(tile, -rot, color.Transparent)
	tw, th := turned.Rect.Dx(), turned.Rect.Dy()
	at := image.Pt(
		int(math.Round(cx-float64(tw)/2)),
		int(math.Round(cy-float64(th)/2)),
	)
	draw.Draw(dst, turned.Rect.Add(at), turned, image.Point{}, draw.Over)
	return nil
}
