// Package gifenc writes palette-indexed frames as a looping GIF89a document.
//
// Each frame carries its own local color table, so frames quantized
// independently keep their own palettes. The whole sequence is validated
// before the first byte is produced; Encode never returns a partial document.
package gifenc

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/AnyUserName/momento/internal/quantize"
)

// MediaType is the content type of an encoded document.
const MediaType = "image/gif"

// DefaultDelay is the per-frame display time used when none is given.
const DefaultDelay = 500 * time.Millisecond

// NoLoop disables the application extension so viewers play the sequence once.
const NoLoop = -1

const maxDimension = 0xFFFF

var (
	ErrNoFrames     = errors.New("gifenc: no frames")
	ErrSizeMismatch = errors.New("gifenc: frame size differs from first frame")
	ErrPalette      = errors.New("gifenc: palette must hold 1 to 256 colors")
	ErrIndexRange   = errors.New("gifenc: index outside palette")
	ErrRaster       = errors.New("gifenc: malformed index raster")
	ErrDelay        = errors.New("gifenc: negative delay")
)

// Frame is one quantized image of the sequence.
type Frame struct {
	Palette quantize.Palette
	Index   *quantize.IndexRaster
	// Delay overrides Options.Delay for this frame when positive.
	Delay time.Duration
}

// Options controls timing and looping.
type Options struct {
	// Delay is the display time of each frame. Zero means DefaultDelay.
	Delay time.Duration
	// Loop is the repeat count written to the NETSCAPE2.0 extension:
	// 0 loops forever, NoLoop omits the extension.
	Loop int
}

// FrameError reports which frame failed validation.
type FrameError struct {
	Index int
	Err   error
	// Detail carries the offending quantities, e.g. "640x480 vs 320x240".
	Detail string
}

func (e *FrameError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("frame %d: %v (%s)", e.Index, e.Err, e.Detail)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Encode validates frames and serializes them into a GIF89a document.
func Encode(frames []Frame, opts Options) ([]byte, error) {
	if err := validate(frames, opts); err != nil {
		return nil, err
	}
	delay := opts.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	w, h := frames[0].Index.Width, frames[0].Index.Height
	var out bytes.Buffer
	out.Grow(64 + len(frames)*(w*h/2+800))

	writeHeader(&out, w, h)
	if opts.Loop != NoLoop {
		writeLoop(&out, opts.Loop)
	}
	for i, f := range frames {
		d := delay
		if f.Delay > 0 {
			d = f.Delay
		}
		if err := writeFrame(&out, f, d); err != nil {
			return nil, fmt.Errorf("gifenc: write frame %d: %w", i, err)
		}
	}
	out.WriteByte(0x3B)
	return out.Bytes(), nil
}

func validate(frames []Frame, opts Options) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if opts.Delay < 0 {
		return ErrDelay
	}
	if opts.Loop < NoLoop || opts.Loop > 0xFFFF {
		return fmt.Errorf("gifenc: loop count %d out of range", opts.Loop)
	}

	var w, h int
	for i, f := range frames {
		r := f.Index
		if r == nil || r.Width <= 0 || r.Height <= 0 || len(r.Index) != r.Width*r.Height {
			return &FrameError{Index: i, Err: ErrRaster}
		}
		if r.Width > maxDimension || r.Height > maxDimension {
			return &FrameError{Index: i, Err: ErrRaster, Detail: fmt.Sprintf("%dx%d exceeds %d", r.Width, r.Height, maxDimension)}
		}
		if i == 0 {
			w, h = r.Width, r.Height
		} else if r.Width != w || r.Height != h {
			return &FrameError{Index: i, Err: ErrSizeMismatch, Detail: fmt.Sprintf("%dx%d vs %dx%d", r.Width, r.Height, w, h)}
		}
		if n := len(f.Palette); n < 1 || n > quantize.MaxColors {
			return &FrameError{Index: i, Err: ErrPalette, Detail: fmt.Sprintf("%d colors", n)}
		}
		if f.Delay < 0 {
			return &FrameError{Index: i, Err: ErrDelay}
		}
		n := len(f.Palette)
		for p, v := range r.Index {
			if int(v) >= n {
				return &FrameError{Index: i, Err: ErrIndexRange, Detail: fmt.Sprintf("index %d at pixel %d, palette %d", v, p, n)}
			}
		}
	}
	return nil
}

func writeHeader(out *bytes.Buffer, w, h int) {
	out.WriteString("GIF89a")
	b := out.AvailableBuffer()
	b = binary.LittleEndian.AppendUint16(b, uint16(w))
	b = binary.LittleEndian.AppendUint16(b, uint16(h))
	// No global color table, background index 0, square pixels.
	b = append(b, 0x00, 0x00, 0x00)
	out.Write(b)
}

func writeLoop(out *bytes.Buffer, count int) {
	out.Write([]byte{0x21, 0xFF, 0x0B})
	out.WriteString("NETSCAPE2.0")
	b := out.AvailableBuffer()
	b = append(b, 0x03, 0x01)
	b = binary.LittleEndian.AppendUint16(b, uint16(count))
	b = append(b, 0x00)
	out.Write(b)
}

func writeFrame(out *bytes.Buffer, f Frame, delay time.Duration) error {
	r := f.Index
	bits := tableBits(len(f.Palette))

	// Graphic control: disposal "do not dispose", no transparency.
	b := out.AvailableBuffer()
	b = append(b, 0x21, 0xF9, 0x04, 0x01<<2)
	b = binary.LittleEndian.AppendUint16(b, hundredths(delay))
	b = append(b, 0x00, 0x00)

	// Image descriptor at the origin with a local color table.
	b = append(b, 0x2C)
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint16(b, uint16(r.Width))
	b = binary.LittleEndian.AppendUint16(b, uint16(r.Height))
	b = append(b, 0x80|byte(bits-1))

	for _, c := range f.Palette {
		b = append(b, c.R, c.G, c.B)
	}
	for i := len(f.Palette); i < 1<<bits; i++ {
		b = append(b, 0, 0, 0)
	}

	litWidth := max(2, bits)
	b = append(b, byte(litWidth))
	out.Write(b)

	bw := &blockWriter{out: out}
	lw := lzw.NewWriter(bw, lzw.LSB, litWidth)
	if _, err := lw.Write(r.Index); err != nil {
		return fmt.Errorf("lzw: %w", err)
	}
	if err := lw.Close(); err != nil {
		return fmt.Errorf("lzw: %w", err)
	}
	bw.close()
	return nil
}

// tableBits returns the smallest b >= 1 with 1<<b >= n.
func tableBits(n int) int {
	b := 1
	for 1<<b < n {
		b++
	}
	return b
}

// hundredths converts a delay to GIF time units, rounding to nearest.
func hundredths(d time.Duration) uint16 {
	cs := (d + 5*time.Millisecond) / (10 * time.Millisecond)
	if cs > 0xFFFF {
		return 0xFFFF
	}
	return uint16(cs)
}

// blockWriter splits a byte stream into length-prefixed sub-blocks of at
// most 255 bytes.
type blockWriter struct {
	out *bytes.Buffer
	buf [255]byte
	n   int
}

func (w *blockWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		c := copy(w.buf[w.n:], p)
		w.n += c
		p = p[c:]
		if w.n == len(w.buf) {
			w.flush()
		}
	}
	return total, nil
}

func (w *blockWriter) flush() {
	if w.n == 0 {
		return
	}
	w.out.WriteByte(byte(w.n))
	w.out.Write(w.buf[:w.n])
	w.n = 0
}

func (w *blockWriter) close() {
	w.flush()
	w.out.WriteByte(0x00)
}
