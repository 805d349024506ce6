package layout

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"

	"github.com/AnyUserName/momento/internal/effect"
	"github.com/AnyUserName/momento/internal/typeface"
)

// text draws one line with its baseline at y.
func text(dst *image.NRGBA, fonts *typeface.Manager, style typeface.Style, size float64,
	s string, x, y float64, align typeface.Align, col color.Color) error {
	face, err := fonts.Face(style, size)
	if err != nil {
		return err
	}
	defer face.Close()
	typeface.DrawAligned(dst, face, s, x, y, align, col)
	return nil
}

// glowText draws s over a blurred copy of itself in glow.
func glowText(dst *image.NRGBA, face font.Face, s string, x, y float64, align typeface.Align,
	col, glow color.NRGBA, blur float64) {
	if s == "" {
		return
	}
	sigma := blur / 2
	pad := int(math.Ceil(3*sigma)) + 2
	adv := float64(font.MeasureString(face, s)) / 64
	m := face.Metrics()
	ascent := int(math.Ceil(float64(m.Ascent) / 64))
	descent := int(math.Ceil(float64(m.Descent) / 64))

	left := x
	switch align {
	case typeface.Center:
		left -= adv / 2
	case typeface.Right:
		left -= adv
	}

	tile := image.NewNRGBA(image.Rect(0, 0, int(math.Ceil(adv))+2*pad, ascent+descent+2*pad))
	typeface.DrawAligned(tile, face, s, float64(pad), float64(pad+ascent), typeface.Left, glow)
	halo := imaging.Blur(tile, sigma)

	at := image.Pt(int(math.Round(left))-pad, int(math.Round(y))-ascent-pad)
	draw.Draw(dst, halo.Rect.Add(at), halo, image.Point{}, draw.Over)
	typeface.DrawAligned(dst, face, s, x, y, align, col)
}

// paintGradient fills dst with an opaque linear gradient.
func paintGradient(dst *image.NRGBA, g effect.Gradient) {
	b := dst.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			c, _ := g.At(b.Min.X+x, y)
			r, gg, bb := c.Clamped().RGB255()
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = r, gg, bb, 0xFF
		}
	}
}
