package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
)

// JPEGEncoder writes baseline JPEG. JPEG has no alpha channel, so
// translucent pixels are flattened over white first.
type JPEGEncoder struct{}

func (*JPEGEncoder) Format() string    { return "jpeg" }
func (*JPEGEncoder) Extension() string { return "jpg" }
func (*JPEGEncoder) MediaType() string { return "image/jpeg" }
func (*JPEGEncoder) Available() bool   { return true }

func (*JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	buf := sized(img, 8)
	opts := &jpeg.Options{Quality: clampQuality(quality)}
	if err := jpeg.Encode(buf, flatten(img), opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGEncoder writes lossless PNG; quality is ignored.
type PNGEncoder struct{}

func (*PNGEncoder) Format() string    { return "png" }
func (*PNGEncoder) Extension() string { return "png" }
func (*PNGEncoder) MediaType() string { return "image/png" }
func (*PNGEncoder) Available() bool   { return true }

func (*PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	buf := sized(img, 2)
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sized returns a buffer pre-grown to w*h*4/ratio bytes.
func sized(img image.Image, ratio int) *bytes.Buffer {
	b := img.Bounds()
	var buf bytes.Buffer
	buf.Grow(b.Dx() * b.Dy() * 4 / ratio)
	return &buf
}

func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
