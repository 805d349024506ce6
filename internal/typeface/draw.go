package typeface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal anchor of a text run relative to its x position.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func fix(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func unfix(v fixed.Int26_6) float64 { return float64(v) / 64 }

// DrawAligned draws text with its alphabetic baseline at y, anchored at x
// by its advance width.
func DrawAligned(dst draw.Image, face font.Face, text string, x, y float64, align Align, col color.Color) {
	adv := unfix(font.MeasureString(face, text))
	switch align {
	case Center:
		x -= adv / 2
	case Right:
		x -= adv
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fix(x), Y: fix(y)},
	}
	d.DrawString(text)
}

// DrawCentered draws text so that the center of its ink bounds lands on
// (cx, cy).
func DrawCentered(dst draw.Image, face font.Face, text string, cx, cy float64, col color.Color) {
	b, _ := font.BoundString(face, text)
	mx := unfix(b.Min.X+b.Max.X) / 2
	my := unfix(b.Min.Y+b.Max.Y) / 2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fix(cx - mx), Y: fix(cy - my)},
	}
	d.DrawString(text)
}

// InkSize returns the width and height of the text's ink bounds.
func InkSize(face font.Face, text string) (float64, float64) {
	b, _ := font.BoundString(face, text)
	return unfix(b.Max.X - b.Min.X), unfix(b.Max.Y - b.Min.Y)
}
