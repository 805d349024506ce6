package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/AnyUserName/momento/internal/effect"
	"github.com/AnyUserName/momento/internal/filter"
	"github.com/AnyUserName/momento/internal/frame"
	"github.com/AnyUserName/momento/internal/typeface"
)

func newCompositor(t *testing.T) *Compositor {
	t.Helper()
	fonts, err := typeface.New("")
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	return New(fonts)
}

func solidBuffer(t *testing.T, w, h int, c color.NRGBA, deco frame.Decoration) *frame.PixelBuffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	buf, err := frame.New(img, deco)
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return buf
}

// centroid returns the darkness-weighted centroid of a white frame.
func centroid(img *image.NRGBA) (float64, float64, float64) {
	var sx, sy, sw float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			wgt := 255 - float64(img.NRGBAAt(x, y).R)
			sx += wgt * (float64(x) + 0.5)
			sy += wgt * (float64(y) + 0.5)
			sw += wgt
		}
	}
	if sw == 0 {
		return 0, 0, 0
	}
	return sx / sw, sy / sw, sw
}

func TestComposite_StickerCentroid(t *testing.T) {
	c := newCompositor(t)
	white := color.NRGBA{255, 255, 255, 255}

	tests := []struct {
		name string
		s    frame.Sticker
	}{
		{"center", frame.Sticker{Glyph: "+", X: 0.5, Y: 0.5, Scale: 1}},
		{"left third", frame.Sticker{Glyph: "+", X: 0.3, Y: 0.25, Scale: 1}},
		{"right edge", frame.Sticker{Glyph: "+", X: 0.8, Y: 0.7, Scale: 0.8}},
		{"rotated", frame.Sticker{Glyph: "+", X: 0.35, Y: 0.6, Scale: 1.2, Rotation: 30}},
		{"quarter turn", frame.Sticker{Glyph: "+", X: 0.6, Y: 0.4, Scale: 1, Rotation: -90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const w, h = 320, 240
			buf := solidBuffer(t, w, h, white, frame.Decoration{Stickers: []frame.Sticker{tt.s}})
			out, err := c.Composite(buf)
			if err != nil {
				t.Fatalf("Composite: %v", err)
			}
			gx, gy, mass := centroid(out)
			if mass == 0 {
				t.Fatal("no glyph ink rendered")
			}
			wantX := (1 - tt.s.X) * w
			wantY := tt.s.Y * h
			if math.Abs(gx-wantX) > 1 || math.Abs(gy-wantY) > 1 {
				t.Errorf("glyph centroid (%.2f,%.2f), want within 1px of (%.2f,%.2f)", gx, gy, wantX, wantY)
			}
		})
	}
}

func TestComposite_StickerSizeFollowsWidth(t *testing.T) {
	c := newCompositor(t)
	white := color.NRGBA{255, 255, 255, 255}
	ink := func(scale float64) float64 {
		buf := solidBuffer(t, 400, 300, white, frame.Decoration{
			Stickers: []frame.Sticker{{Glyph: "+", X: 0.5, Y: 0.5, Scale: scale}},
		})
		out, err := c.Composite(buf)
		if err != nil {
			t.Fatal(err)
		}
		_, _, mass := centroid(out)
		return mass
	}
	small, large := ink(1), ink(2)
	// Ink area grows with the square of the glyph size.
	if r := large / small; r < 3 || r > 5 {
		t.Errorf("ink ratio for 2x scale: %.2f", r)
	}
}

func TestComposite_NoDecorationIsIdentity(t *testing.T) {
	c := newCompositor(t)
	buf := solidBuffer(t, 64, 48, color.NRGBA{200, 10, 10, 255}, frame.Decoration{Filter: "normal", Effect: "none"})
	out, err := c.Composite(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pix, buf.Pix()) {
		t.Error("normal/none/no stickers should reproduce the raster")
	}
	out.Pix[0] = 0
	if buf.Pix()[0] != 200 {
		t.Error("composite aliased the pixel buffer")
	}
}

func TestComposite_Deterministic(t *testing.T) {
	c := newCompositor(t)
	img := image.NewNRGBA(image.Rect(0, 0, 96, 72))
	for y := 0; y < 72; y++ {
		for x := 0; x < 96; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 2), uint8(y * 3), 77, 255})
		}
	}
	for _, f := range filter.All() {
		for _, e := range effect.All() {
			buf, err := frame.New(img, frame.Decoration{
				Filter: f.ID, Effect: e.ID,
				Stickers: []frame.Sticker{{Glyph: "*", X: 0.2, Y: 0.3, Scale: 1, Rotation: 15}},
			})
			if err != nil {
				t.Fatal(err)
			}
			a, err := c.Composite(buf)
			if err != nil {
				t.Fatalf("%s/%s: %v", f.ID, e.ID, err)
			}
			b, _ := c.Composite(buf)
			if !bytes.Equal(a.Pix, b.Pix) {
				t.Errorf("%s/%s: not deterministic", f.ID, e.ID)
			}
			if a.Bounds() != buf.Bounds() {
				t.Errorf("%s/%s: bounds changed to %v", f.ID, e.ID, a.Bounds())
			}
		}
	}
}

func TestComposite_UnknownIDs(t *testing.T) {
	c := newCompositor(t)
	buf := solidBuffer(t, 8, 8, color.NRGBA{A: 255}, frame.Decoration{Filter: "lomo"})
	if _, err := c.Composite(buf); !errors.Is(err, filter.ErrUnknown) {
		t.Errorf("want filter.ErrUnknown, got %v", err)
	}
	buf = solidBuffer(t, 8, 8, color.NRGBA{A: 255}, frame.Decoration{Effect: "sparkle"})
	if _, err := c.Composite(buf); !errors.Is(err, effect.ErrUnknown) {
		t.Errorf("want effect.ErrUnknown, got %v", err)
	}
	if _, err := c.Composite(nil); !errors.Is(err, frame.ErrEmptyRaster) {
		t.Errorf("nil buffer: want ErrEmptyRaster, got %v", err)
	}
}

func TestStickerCenter_Mirrors(t *testing.T) {
	x, y := StickerCenter(frame.Sticker{X: 0.25, Y: 0.75}, 640, 480)
	if x != 480 || y != 360 {
		t.Errorf("got (%v,%v)", x, y)
	}
}

func TestComposite_StickerCatalogDistinct(t *testing.T) {
	c := newCompositor(t)
	white := color.NRGBA{255, 255, 255, 255}
	seen := map[string]string{}
	for _, g := range StickerGlyphs {
		buf := solidBuffer(t, 320, 240, white, frame.Decoration{
			Stickers: []frame.Sticker{{Glyph: g, X: 0.5, Y: 0.5, Scale: 1}},
		})
		out, err := c.Composite(buf)
		if err != nil {
			t.Fatalf("%q: %v", g, err)
		}
		if _, _, mass := centroid(out); mass == 0 {
			t.Errorf("%q rendered no ink", g)
		}
		key := string(out.Pix)
		if prev, dup := seen[key]; dup {
			t.Errorf("%q renders identically to %q", g, prev)
		}
		seen[key] = g
	}
}

func TestComposite_VariationSelectorIgnored(t *testing.T) {
	c := newCompositor(t)
	white := color.NRGBA{255, 255, 255, 255}
	render := func(g string) []byte {
		buf := solidBuffer(t, 160, 120, white, frame.Decoration{
			Stickers: []frame.Sticker{{Glyph: g, X: 0.4, Y: 0.6, Scale: 1, Rotation: 10}},
		})
		out, err := c.Composite(buf)
		if err != nil {
			t.Fatalf("%q: %v", g, err)
		}
		return out.Pix
	}
	if !bytes.Equal(render("♥"), render("♥\uFE0F")) {
		t.Error("U+FE0F changed the rendered sticker")
	}
}

func TestComposite_MissingGlyph(t *testing.T) {
	c := newCompositor(t)
	for _, g := range EmojiGlyphs {
		buf := solidBuffer(t, 64, 48, color.NRGBA{255, 255, 255, 255}, frame.Decoration{
			Stickers: []frame.Sticker{{Glyph: g, X: 0.5, Y: 0.5, Scale: 1}},
		})
		_, err := c.Composite(buf)
		if !errors.Is(err, ErrMissingGlyph) {
			t.Errorf("%q: want ErrMissingGlyph, got %v", g, err)
			continue
		}
		if msg := err.Error(); !strings.Contains(msg, g) || !strings.Contains(msg, "Go Regular") {
			t.Errorf("%q: message does not name glyph and font: %s", g, msg)
		}
	}
}

func TestComposite_NonFinitePlacement(t *testing.T) {
	c := newCompositor(t)
	nan, inf := math.NaN(), math.Inf(1)
	tests := []frame.Sticker{
		{Glyph: "♥", X: nan, Y: 0.5, Scale: 1},
		{Glyph: "♥", X: 0.5, Y: inf, Scale: 1},
		{Glyph: "♥", X: 0.5, Y: 0.5, Scale: inf},
		{Glyph: "♥", X: 0.5, Y: 0.5, Scale: 1, Rotation: nan},
	}
	for i, s := range tests {
		buf := solidBuffer(t, 32, 24, color.NRGBA{A: 255}, frame.Decoration{Stickers: []frame.Sticker{s}})
		if _, err := c.Composite(buf); !errors.Is(err, ErrPlacement) {
			t.Errorf("case %d: want ErrPlacement, got %v", i, err)
		}
	}
}

func TestWithGlyphColor(t *testing.T) {
	fonts, err := typeface.New("")
	if err != nil {
		t.Fatal(err)
	}
	red := color.NRGBA{255, 0, 0, 255}
	c := New(fonts, WithGlyphColor(red))
	buf := solidBuffer(t, 200, 200, color.NRGBA{255, 255, 255, 255}, frame.Decoration{
		Stickers: []frame.Sticker{{Glyph: "●", X: 0.5, Y: 0.5, Scale: 1}},
	})
	out, err := c.Composite(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.NRGBAAt(100, 100); got != red {
		t.Errorf("glyph center %v, want %v", got, red)
	}
}
