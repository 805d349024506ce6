// Package layout arranges composited frames onto a template canvas.
//
// A Template is an immutable descriptor: canvas size, ordered slots, and two
// painters (background before the slots, chrome after). The Engine owns
// everything that varies between renders of the same template: fonts, the
// clock and the date locale.
package layout

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/text/language"

	"github.com/AnyUserName/momento/internal/frame"
	"github.com/AnyUserName/momento/internal/typeface"
)

// ErrUnknownTemplate is returned by Catalog.Get for ids not in the catalog.
var ErrUnknownTemplate = errors.New("layout: unknown template")

// CountError reports a frame count that does not match the template's slots.
type CountError struct {
	Template  string
	Want, Got int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("layout: template %q needs %d frames, got %d", e.Template, e.Want, e.Got)
}

// Shadow is a blurred drop shadow cast by a slot's mat.
type Shadow struct {
	Color color.NRGBA
	// Blur is the blur radius in pixels; the Gaussian sigma is half of it.
	Blur float64
}

// Slot is one photo position. Rect is the photo area before rotation;
// Border widens it into a mat painted beneath the photo. Rotation is in
// degrees, clockwise around the center of Rect.
type Slot struct {
	Rect     image.Rectangle
	Rotation float64
	Border   int
	Mat      color.NRGBA
	Shadow   *Shadow
}

// Env is what a painter may draw with.
type Env struct {
	Fonts *typeface.Manager
	Date  string
}

// Painter draws part of a template directly onto the canvas.
type Painter func(dst *image.NRGBA, env Env) error

// Template describes one layout. Templates from a Catalog are shared and
// must not be modified.
type Template struct {
	ID     string
	Name   string
	Icon   string
	Width  int
	Height int
	Slots  []Slot

	Background Painter
	Chrome     Painter
}

// Size returns the canvas size.
func (t *Template) Size() image.Point { return image.Pt(t.Width, t.Height) }

// Engine renders templates. It is safe for concurrent use.
type Engine struct {
	fonts  *typeface.Manager
	now    func() time.Time
	locale language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source for the date stamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocale sets the language used to format the date stamp.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) { e.locale = tag }
}

// NewEngine creates an engine drawing chrome text with fonts.
func NewEngine(fonts *typeface.Manager, opts ...Option) *Engine {
	e := &Engine{fonts: fonts, now: time.Now, locale: language.AmericanEnglish}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Render paints the template with one frame per slot, in slot order.
// Frames are stretched to their slot rectangles. Nothing is returned unless
// every layer was drawn.
func (e *Engine) Render(tpl *Template, frames []image.Image) (*image.NRGBA, error) {
	if tpl == nil {
		return nil, ErrUnknownTemplate
	}
	if len(frames) != len(tpl.Slots) {
		return nil, &CountError{Template: tpl.ID, Want: len(tpl.Slots), Got: len(frames)}
	}
	for i, f := range frames {
		if f == nil || f.Bounds().Empty() {
			return nil, fmt.Errorf("layout: frame %d: %w", i, frame.ErrEmptyRaster)
		}
	}

	env := Env{Fonts: e.fonts, Date: FormatDate(e.now(), e.locale)}
	dst := image.NewNRGBA(image.Rect(0, 0, tpl.Width, tpl.Height))
	if tpl.Background != nil {
		if err := tpl.Background(dst, env); err != nil {
			return nil, fmt.Errorf("layout: %s background: %w", tpl.ID, err)
		}
	}
	for i, s := range tpl.Slots {
		drawSlot(dst, s, frames[i])
	}
	if tpl.Chrome != nil {
		if err := tpl.Chrome(dst, env); err != nil {
			return nil, fmt.Errorf("layout: %s chrome: %w", tpl.ID, err)
		}
	}
	return dst, nil
}

func drawSlot(dst *image.NRGBA, s Slot, src image.Image) {
	photo := imaging.Resize(src, s.Rect.Dx(), s.Rect.Dy(), imaging.Lanczos)
	if s.Rotation == 0 && s.Shadow == nil {
		if s.Border > 0 {
			fillRect(dst, s.Rect.Inset(-s.Border), s.Mat)
		}
		draw.Draw(dst, s.Rect, photo, image.Point{}, draw.Over)
		return
	}

	// Build the slot on its own tile, then turn it about the slot center.
	mat := s.Rect.Inset(-s.Border)
	pad := 0
	if s.Shadow != nil {
		pad = int(math.Ceil(1.5*s.Shadow.Blur)) + 1
	}
	tileRect := image.Rect(0, 0, mat.Dx()+2*pad, mat.Dy()+2*pad)
	inner := mat.Sub(mat.Min).Add(image.Pt(pad, pad))

	tile := image.NewNRGBA(tileRect)
	if s.Shadow != nil {
		shade := image.NewNRGBA(tileRect)
		fillRect(shade, inner, s.Shadow.Color)
		draw.Draw(tile, tileRect, imaging.Blur(shade, s.Shadow.Blur/2), image.Point{}, draw.Over)
	}
	if s.Border > 0 {
		fillRect(tile, inner, s.Mat)
	}
	draw.Draw(tile, inner.Inset(s.Border), photo, image.Point{}, draw.Over)

	turned := tile
	if s.Rotation != 0 {
		// imaging turns counter-clockwise.
		turned = imaging.Rotate(tile, -s.Rotation, color.Transparent)
	}
	cx := float64(s.Rect.Min.X+s.Rect.Max.X) / 2
	cy := float64(s.Rect.Min.Y+s.Rect.Max.Y) / 2
	at := image.Pt(
		int(math.Round(cx-float64(turned.Rect.Dx())/2)),
		int(math.Round(cy-float64(turned.Rect.Dy())/2)),
	)
	draw.Draw(dst, turned.Rect.Add(at), turned, image.Point{}, draw.Over)
}

func fillRect(dst draw.Image, r image.Rectangle, c color.NRGBA) {
	op := draw.Over
	if c.A == 0xFF {
		op = draw.Src
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, op)
}
