package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// tool is an external command-line encoder found on PATH.
type tool struct {
	name string
	hint string

	once sync.Once
	path string
}

func (t *tool) available() bool {
	t.once.Do(func() {
		if p, err := exec.LookPath(t.name); err == nil {
			t.path = p
		}
	})
	return t.path != ""
}

// run writes img as a PNG temp file, calls the tool with args built from
// the source and destination paths, and returns the destination bytes.
func (t *tool) run(img image.Image, ext string, args func(src, dst string) []string) ([]byte, error) {
	if !t.available() {
		return nil, fmt.Errorf("%s not found in PATH; install with: %s", t.name, t.hint)
	}

	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("momento_%s_src_%d_*.png", t.name, id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("momento_%s_dst_%d_*.%s", t.name, id, ext))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := srcFile.Close(); err != nil {
		return nil, fmt.Errorf("write temp png: %w", err)
	}

	cmd := exec.Command(t.path, args(srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", t.name, err, string(out))
	}
	return os.ReadFile(dstPath)
}

// WebPEncoder encodes images to WebP by shelling out to cwebp.
// This approach avoids CGO while still producing optimized WebP.
type WebPEncoder struct {
	t tool
}

func NewWebPEncoder() *WebPEncoder {
	return &WebPEncoder{t: tool{name: "cwebp", hint: "brew install webp / apt install webp"}}
}

func (e *WebPEncoder) Format() string    { return "webp" }
func (e *WebPEncoder) Extension() string { return "webp" }
func (e *WebPEncoder) MediaType() string { return "image/webp" }
func (e *WebPEncoder) Available() bool   { return e.t.available() }

func (e *WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	q := strconv.Itoa(clampQuality(quality))
	return e.t.run(img, "webp", func(src, dst string) []string {
		return []string{
			"-q", q,
			"-m", "6", // compression method (0=fast, 6=best)
			"-mt",
			"-quiet",
			src,
			"-o", dst,
		}
	})
}

// AVIFEncoder encodes images to AVIF by shelling out to avifenc.
type AVIFEncoder struct {
	t tool
}

func NewAVIFEncoder() *AVIFEncoder {
	return &AVIFEncoder{t: tool{name: "avifenc", hint: "brew install libavif / apt install libavif-bin"}}
}

func (e *AVIFEncoder) Format() string    { return "avif" }
func (e *AVIFEncoder) Extension() string { return "avif" }
func (e *AVIFEncoder) MediaType() string { return "image/avif" }
func (e *AVIFEncoder) Available() bool   { return e.t.available() }

func (e *AVIFEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	// avifenc quantizers run 0 (best) to 63.
	q := strconv.Itoa(63 - clampQuality(quality)*63/100)
	return e.t.run(img, "avif", func(src, dst string) []string {
		return []string{
			"--min", q,
			"--max", q,
			"--speed", "6",
			"-j", "all",
			src,
			dst,
		}
	})
}
