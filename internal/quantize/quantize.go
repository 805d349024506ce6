// Package quantize reduces a true-color raster to at most 256 colors and an
// index raster referencing them, using median cut over a 15-bit histogram.
//
// The result is a pure function of the input pixels: histogram entries are
// kept in key order, boxes are split in a fixed order and ties resolve to the
// lowest index, so the same raster always yields the same palette.
package quantize

import (
	"errors"
	"image"
	"image/color"
	"sort"
)

// MaxColors is the largest palette a GIF color table can hold.
const MaxColors = 256

// ErrEmptyRaster is returned for rasters with a zero dimension.
var ErrEmptyRaster = errors.New("quantize: raster has zero width or height")

// RGB is one palette entry.
type RGB struct{ R, G, B uint8 }

// Palette is an ordered list of 1..256 colors.
type Palette []RGB

// Color converts the palette for use with image.Paletted.
func (p Palette) Color() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = color.RGBA{c.R, c.G, c.B, 0xFF}
	}
	return out
}

// IndexRaster holds one palette index per pixel, row-major.
type IndexRaster struct {
	Width, Height int
	Index         []uint8
}

// Paletted pairs an index raster with its palette as a standard image.
func Paletted(p Palette, r *IndexRaster) *image.Paletted {
	return &image.Paletted{
		Pix:     r.Index,
		Stride:  r.Width,
		Rect:    image.Rect(0, 0, r.Width, r.Height),
		Palette: p.Color(),
	}
}

// Options tunes quantization. The zero value means MaxColors.
type Options struct {
	MaxColors int
}

func (o Options) maxColors() int {
	if o.MaxColors < 2 || o.MaxColors > MaxColors {
		return MaxColors
	}
	return o.MaxColors
}

// Quantize builds a palette for img and maps every pixel to its nearest
// entry. Alpha is ignored.
func Quantize(img image.Image, opts Options) (Palette, *IndexRaster, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, nil, ErrEmptyRaster
	}
	px := rgbPixels(img)
	limit := opts.maxColors()

	pal, exact := exactPalette(px, limit)
	if !exact {
		pal = medianCut(buildHistogram(px), limit)
	}

	idx := &IndexRaster{Width: w, Height: h, Index: make([]uint8, w*h)}
	m := newMatcher(pal)
	for i := range idx.Index {
		idx.Index[i] = m.nearest(px[i])
	}
	return pal, idx, nil
}

// rgbPixels flattens the raster to packed 0xRRGGBB values.
func rgbPixels(img image.Image) []uint32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint32, 0, w*h)

	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			row := src.Pix[off : off+w*4]
			for i := 0; i < len(row); i += 4 {
				out = append(out, pack(row[i], row[i+1], row[i+2]))
			}
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out = append(out, pack(c.R, c.G, c.B))
		}
	}
	return out
}

func pack(r, g, b uint8) uint32 { return uint32(r)<<16 | uint32(g)<<8 | uint32(b) }

func unpack(v uint32) RGB { return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)} }

// exactPalette returns the distinct colors in ascending order when there are
// no more than limit of them.
func exactPalette(px []uint32, limit int) (Palette, bool) {
	seen := make(map[uint32]struct{}, limit+1)
	for _, v := range px {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		if len(seen) > limit {
			return nil, false
		}
	}
	keys := make([]uint32, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	pal := make(Palette, len(keys))
	for i, k := range keys {
		pal[i] = unpack(k)
	}
	return pal, true
}
