//go:build ignore

// gen_fixtures creates a four-shot capture session for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/AnyUserName/momento/internal/capture"
	"github.com/AnyUserName/momento/internal/frame"
)

const w, h = 320, 240

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "shots"), 0o755); err != nil {
		fail(err)
	}

	sess := capture.Session{
		Template: "strip",
		Profile:  "share",
		Delay:    capture.Duration{Duration: 400 * time.Millisecond},
		Locale:   "en-GB",

		GlyphColor: "#ff3366",
	}
	decor := []capture.Shot{
		{Filter: "normal", Effect: "none"},
		{Filter: "noir", Effect: "vignette", Stickers: []frame.Sticker{
			{Glyph: "☺", X: 0.5, Y: 0.4, Scale: 1},
		}},
		{Filter: "1977", Effect: "leak", Mirrored: true},
		{Filter: "golden", Effect: "grain", Stickers: []frame.Sticker{
			{Glyph: "♪", X: 0.2, Y: 0.2, Scale: 0.8, Rotation: 15},
			{Glyph: "♥", X: 0.8, Y: 0.75, Scale: 1.2, Rotation: -10},
		}},
	}
	for i, shot := range decor {
		img := portrait(uint8(i * 60))
		if i%2 == 0 {
			shot.File = fmt.Sprintf("shots/shot-%d.png", i+1)
			writePNG(filepath.Join(dir, shot.File), img)
		} else {
			shot.File = fmt.Sprintf("shots/shot-%d.jpg", i+1)
			writeJPEG(filepath.Join(dir, shot.File), img)
		}
		sess.Shots = append(sess.Shots, shot)
	}

	f, err := os.Create(filepath.Join(dir, "session.toml"))
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(sess); err != nil {
		fail(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d shots and session.toml in %s\n", len(decor), dir)
}

// portrait draws a gradient backdrop with a lighter disc left of center,
// so un-mirroring is visible.
func portrait(hue uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy, r := w/3, h/2, h/3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{
				R: uint8(x*255/w) ^ hue,
				G: uint8(y * 255 / h),
				B: 160 - hue/2,
				A: 255,
			}
			if dx, dy := x-cx, y-cy; dx*dx+dy*dy < r*r {
				c = color.NRGBA{240, 210, 190, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fail(err)
	}
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fail(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "[gen_fixtures]", err)
	os.Exit(1)
}
