package frame

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestNew_CopiesPixels(t *testing.T) {
	src := solid(4, 3, color.NRGBA{10, 20, 30, 255})
	buf, err := New(src, Decoration{Filter: "normal", Effect: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	src.Pix[0] = 99
	if buf.Pix()[0] != 10 {
		t.Errorf("buffer aliased the source raster")
	}
	if buf.Width() != 4 || buf.Height() != 3 {
		t.Errorf("size: got %dx%d", buf.Width(), buf.Height())
	}
	if len(buf.Pix()) != 4*3*4 {
		t.Errorf("pix length: got %d", len(buf.Pix()))
	}
}

func TestNew_NormalizesOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 9, 8))
	buf, err := New(src, Decoration{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if buf.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds not anchored at origin: %v", buf.Bounds())
	}
}

func TestNew_ZeroSize(t *testing.T) {
	_, err := New(image.NewNRGBA(image.Rect(0, 0, 0, 10)), Decoration{})
	if !errors.Is(err, ErrEmptyRaster) {
		t.Fatalf("want ErrEmptyRaster, got %v", err)
	}
	if _, err := New(nil, Decoration{}); !errors.Is(err, ErrEmptyRaster) {
		t.Fatalf("nil image: want ErrEmptyRaster, got %v", err)
	}
}

func TestDecoration_IsolatedFromCaller(t *testing.T) {
	stickers := []Sticker{{Glyph: "+", X: 0.5, Y: 0.5}}
	buf, err := New(solid(2, 2, color.NRGBA{A: 255}), Decoration{Stickers: stickers})
	if err != nil {
		t.Fatal(err)
	}
	stickers[0].Glyph = "x"
	d := buf.Decoration()
	if d.Stickers[0].Glyph != "+" {
		t.Errorf("sticker list aliased caller slice")
	}
	if d.Stickers[0].Scale != 1 {
		t.Errorf("zero scale should default to 1, got %v", d.Stickers[0].Scale)
	}
	d.Stickers[0].Glyph = "y"
	if buf.Decoration().Stickers[0].Glyph != "+" {
		t.Errorf("Decoration returned shared slice")
	}
}

func TestCheckUniform(t *testing.T) {
	a, _ := New(solid(4, 4, color.NRGBA{A: 255}), Decoration{})
	b, _ := New(solid(4, 4, color.NRGBA{A: 255}), Decoration{})
	c, _ := New(solid(5, 4, color.NRGBA{A: 255}), Decoration{})

	if err := CheckUniform([]*PixelBuffer{a, b}); err != nil {
		t.Errorf("uniform: %v", err)
	}
	err := CheckUniform([]*PixelBuffer{a, b, c})
	var se *SizeError
	if !errors.As(err, &se) {
		t.Fatalf("want *SizeError, got %v", err)
	}
	if se.Index != 2 || se.Got.X != 5 || se.Want.X != 4 {
		t.Errorf("unexpected error fields: %+v", se)
	}
	if err := CheckUniform(nil); !errors.Is(err, ErrNoFrames) {
		t.Errorf("empty: want ErrNoFrames, got %v", err)
	}
}

func TestUnmirror(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})
	out := Unmirror(src)
	if out.NRGBAAt(0, 0).B != 255 || out.NRGBAAt(1, 0).R != 255 {
		t.Errorf("not flipped: %v %v", out.NRGBAAt(0, 0), out.NRGBAAt(1, 0))
	}
}
