package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/momento/internal/frame"
)

// Frames loads every shot of the session, in order.
func (s *Session) Frames() ([]*frame.PixelBuffer, error) {
	if len(s.Shots) == 0 {
		return nil, ErrNoShots
	}
	bufs := make([]*frame.PixelBuffer, len(s.Shots))
	for i, sh := range s.Shots {
		img, err := LoadImage(s.Path(sh))
		if err != nil {
			return nil, fmt.Errorf("shot %d: %w", i, err)
		}
		if !sh.Mirrored {
			img = frame.Unmirror(img)
		}
		buf, err := frame.New(img, sh.Decoration())
		if err != nil {
			return nil, fmt.Errorf("shot %d (%s): %w", i, sh.File, err)
		}
		bufs[i] = buf
	}
	return bufs, nil
}

// LoadImage decodes an image file and applies its EXIF orientation, so the
// result is upright.
func LoadImage(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	orient := 1
	if format == "jpeg" || format == "tiff" {
		orient = exifOrientation(data)
	}
	return orientate(imaging.Clone(img), orient), nil
}

// exifOrientation returns the EXIF orientation tag, or 1 when absent.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil || tag == nil || tag.Count == 0 {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orientate undoes the transform described by an EXIF orientation value.
func orientate(img *image.NRGBA, orient int) *image.NRGBA {
	switch orient {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	}
	return img
}
