package quantize

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func solidImg(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func gradientImg(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x*7 + y*13) % 256), A: 255,
			})
		}
	}
	return img
}

func checkInvariants(t *testing.T, name string, img image.Image, pal Palette, idx *IndexRaster) {
	t.Helper()
	if len(pal) < 1 || len(pal) > MaxColors {
		t.Errorf("%s: palette length %d out of range", name, len(pal))
	}
	b := img.Bounds()
	if idx.Width != b.Dx() || idx.Height != b.Dy() || len(idx.Index) != b.Dx()*b.Dy() {
		t.Errorf("%s: index raster %dx%d (%d) for %v", name, idx.Width, idx.Height, len(idx.Index), b)
	}
	for i, v := range idx.Index {
		if int(v) >= len(pal) {
			t.Fatalf("%s: index %d at pixel %d >= palette length %d", name, v, i, len(pal))
		}
	}
}

func TestQuantize_SolidColor(t *testing.T) {
	img := solidImg(640, 480, color.NRGBA{200, 30, 90, 255})
	pal, idx, err := Quantize(img, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, "solid", img, pal, idx)
	if len(pal) != 1 {
		t.Fatalf("solid color palette length %d, want 1", len(pal))
	}
	if pal[0] != (RGB{200, 30, 90}) {
		t.Errorf("palette entry %v", pal[0])
	}
}

func TestQuantize_FewColorsExact(t *testing.T) {
	img := solidImg(8, 8, color.NRGBA{0, 0, 0, 255})
	colors := []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	for i, c := range colors {
		img.SetNRGBA(i, 0, c)
	}
	pal, idx, err := Quantize(img, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) != 4 {
		t.Fatalf("palette length %d, want 4", len(pal))
	}
	for i, c := range colors {
		got := pal[idx.Index[i]]
		if got != (RGB{c.R, c.G, c.B}) {
			t.Errorf("pixel %d mapped to %v, want %v", i, got, c)
		}
	}
}

func TestQuantize_Gradient(t *testing.T) {
	img := gradientImg(320, 240)
	pal, idx, err := Quantize(img, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, "gradient", img, pal, idx)
	if len(pal) < 200 {
		t.Errorf("diverse image produced only %d colors", len(pal))
	}
	seen := map[RGB]bool{}
	for _, c := range pal {
		if seen[c] {
			t.Errorf("duplicate palette entry %v", c)
		}
		seen[c] = true
	}

	// Mean error per channel stays small for a 256 color palette.
	var sum int
	for i, v := range idx.Index {
		x, y := i%320, i/320
		c := img.NRGBAAt(x, y)
		p := pal[v]
		sum += abs(int(c.R)-int(p.R)) + abs(int(c.G)-int(p.G)) + abs(int(c.B)-int(p.B))
	}
	if mean := float64(sum) / float64(3*len(idx.Index)); mean > 24 {
		t.Errorf("mean channel error %.2f too high", mean)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestQuantize_Deterministic(t *testing.T) {
	img := gradientImg(200, 150)
	p1, i1, _ := Quantize(img, Options{})
	p2, i2, _ := Quantize(img, Options{})
	if len(p1) != len(p2) {
		t.Fatalf("palette length differs: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("palette entry %d differs: %v vs %v", i, p1[i], p2[i])
		}
	}
	if !bytes.Equal(i1.Index, i2.Index) {
		t.Fatal("index rasters differ")
	}
}

func TestQuantize_MaxColors(t *testing.T) {
	img := gradientImg(100, 100)
	pal, idx, err := Quantize(img, Options{MaxColors: 16})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, "max16", img, pal, idx)
	if len(pal) > 16 {
		t.Errorf("palette length %d exceeds 16", len(pal))
	}
}

func TestQuantize_IgnoresAlpha(t *testing.T) {
	img := solidImg(4, 4, color.NRGBA{10, 20, 30, 0})
	pal, _, err := Quantize(img, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) != 1 || pal[0] != (RGB{10, 20, 30}) {
		t.Errorf("got %v", pal)
	}
}

func TestQuantize_GenericImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 3, 12, 9))
	for y := 3; y < 9; y++ {
		for x := 2; x < 12; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 20), uint8(y * 20), 0, 255})
		}
	}
	pal, idx, err := Quantize(img, Options{})
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, "rgba", img, pal, idx)
	p := Paletted(pal, idx)
	if got := p.At(0, 0); got != (color.RGBA{40, 60, 0, 255}) {
		t.Errorf("paletted origin pixel %v", got)
	}
}

func TestQuantize_Empty(t *testing.T) {
	_, _, err := Quantize(image.NewNRGBA(image.Rect(0, 0, 0, 5)), Options{})
	if !errors.Is(err, ErrEmptyRaster) {
		t.Errorf("want ErrEmptyRaster, got %v", err)
	}
}
