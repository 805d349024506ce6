// Package frame holds the immutable per-shot raster a capture session hands
// to the composition pipeline.
package frame

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ErrEmptyRaster is returned for rasters with a zero dimension.
var ErrEmptyRaster = errors.New("frame: raster has zero width or height")

// ErrNoFrames is returned when a session produced no frames at all.
var ErrNoFrames = errors.New("frame: empty frame sequence")

// Sticker is one glyph placed on the live preview before capture.
// X and Y are normalized to [0,1] in preview space (mirrored, origin
// top-left); Scale multiplies the base glyph size; Rotation is in degrees,
// clockwise on screen.
type Sticker struct {
	Glyph    string  `toml:"glyph" json:"glyph"`
	X        float64 `toml:"x" json:"x"`
	Y        float64 `toml:"y" json:"y"`
	Scale    float64 `toml:"scale" json:"scale"`
	Rotation float64 `toml:"rotation" json:"rotation"`
}

// Decoration is the snapshot of the user's choices at the moment of capture.
type Decoration struct {
	Filter   string
	Effect   string
	Stickers []Sticker
}

// PixelBuffer is one captured shot: an RGBA8 raster and its decoration.
// It is never mutated after New returns.
type PixelBuffer struct {
	img  *image.NRGBA
	deco Decoration
}

// New copies img into a tightly packed RGBA8 raster anchored at (0,0).
func New(img image.Image, deco Decoration) (*PixelBuffer, error) {
	if img == nil {
		return nil, ErrEmptyRaster
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w (%dx%d)", ErrEmptyRaster, b.Dx(), b.Dy())
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	stickers := make([]Sticker, len(deco.Stickers))
	copy(stickers, deco.Stickers)
	for i := range stickers {
		if stickers[i].Scale <= 0 {
			stickers[i].Scale = 1
		}
	}
	deco.Stickers = stickers

	return &PixelBuffer{img: dst, deco: deco}, nil
}

func (p *PixelBuffer) Width() int  { return p.img.Rect.Dx() }
func (p *PixelBuffer) Height() int { return p.img.Rect.Dy() }

// Bounds returns the raster rectangle, always anchored at the origin.
func (p *PixelBuffer) Bounds() image.Rectangle { return p.img.Rect }

// Image returns a copy of the raster that callers may modify freely.
func (p *PixelBuffer) Image() *image.NRGBA {
	return imaging.Clone(p.img)
}

// Pix exposes the backing RGBA bytes. Callers must treat them as read-only.
func (p *PixelBuffer) Pix() []byte { return p.img.Pix }

// Decoration returns the decoration snapshot; the sticker slice is a copy.
func (p *PixelBuffer) Decoration() Decoration {
	d := p.deco
	d.Stickers = append([]Sticker(nil), p.deco.Stickers...)
	return d
}

// Unmirror flips a raw, non-mirrored camera image horizontally so that it
// matches the handedness stored in a PixelBuffer.
func Unmirror(img image.Image) *image.NRGBA {
	return imaging.FlipH(img)
}

// SizeError reports a frame whose dimensions differ from the first frame.
type SizeError struct {
	Index     int
	Want, Got image.Point
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("frame %d is %dx%d, want %dx%d like frame 0",
		e.Index, e.Got.X, e.Got.Y, e.Want.X, e.Want.Y)
}

// CheckUniform verifies that all buffers share the first buffer's size.
func CheckUniform(bufs []*PixelBuffer) error {
	if len(bufs) == 0 {
		return ErrNoFrames
	}
	want := bufs[0].Bounds().Size()
	for i, b := range bufs[1:] {
		if got := b.Bounds().Size(); got != want {
			return &SizeError{Index: i + 1, Want: want, Got: got}
		}
	}
	return nil
}
