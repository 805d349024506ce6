// Package effect implements the overlay effects baked into a captured shot
// after its color filter: vignette, directional tints, blur and film grain.
package effect

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
)

// ErrUnknown is returned by Get for ids missing from the catalog.
var ErrUnknown = errors.New("effect: unknown effect")

// Kind selects the overlay algorithm.
type Kind int

const (
	None Kind = iota
	Vignette
	Tint
	Blur
	Grain
)

func (k Kind) String() string {
	switch k {
	case Vignette:
		return "radial-vignette"
	case Tint:
		return "linear-tint"
	case Blur:
		return "blur"
	case Grain:
		return "grain"
	default:
		return "none"
	}
}

// Blend is how a tint is composited over the frame.
type Blend int

const (
	Normal Blend = iota
	Screen       // lightens only
)

// Definition is an immutable catalog entry. Only the fields relevant to
// Kind are consulted.
type Definition struct {
	ID   string
	Name string
	Kind Kind

	// Tint
	Angle float64 // degrees, stylesheet convention
	Stops []Stop
	Blend Blend

	// Vignette: opacity of black at the far corners.
	Darkness float64

	// Blur: Gaussian sigma in pixels.
	Sigma float64

	// Grain: peak noise amplitude in [0,1] and generator seed.
	Strength float64
	Seed     uint64
}

// Apply bakes the effect into a copy of img.
func (d Definition) Apply(img *image.NRGBA) *image.NRGBA {
	switch d.Kind {
	case Vignette:
		return d.vignette(img)
	case Tint:
		return d.tint(img)
	case Blur:
		return imaging.Blur(img, d.Sigma)
	case Grain:
		return d.grain(img)
	default:
		return imaging.Clone(img)
	}
}

// vignette keeps the inner half of the half-diagonal untouched and eases
// towards Darkness at the corners.
func (d Definition) vignette(src *image.NRGBA) *image.NRGBA {
	dst := imaging.Clone(src)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	halfDiag := math.Hypot(cx, cy)

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			dist := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / halfDiag
			t := (dist - 0.5) / 0.5
			if t <= 0 {
				continue
			}
			if t > 1 {
				t = 1
			}
			t = t * t * (3 - 2*t)
			k := 1 - d.Darkness*t
			i := x * 4
			row[i] = uint8(math.Round(float64(row[i]) * k))
			row[i+1] = uint8(math.Round(float64(row[i+1]) * k))
			row[i+2] = uint8(math.Round(float64(row[i+2]) * k))
		}
	}
	return dst
}

func (d Definition) tint(src *image.NRGBA) *image.NRGBA {
	dst := imaging.Clone(src)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	g := AngleGradient(d.Angle, w, h, d.Stops...)

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			c, a := g.At(x, y)
			if a <= 0 {
				continue
			}
			c = c.Clamped()
			top := [3]float64{c.R * 255, c.G * 255, c.B * 255}
			i := x * 4
			for ch := 0; ch < 3; ch++ {
				base := float64(row[i+ch])
				over := top[ch]
				if d.Blend == Screen {
					over = 255 - (255-base)*(255-top[ch])/255
				}
				row[i+ch] = uint8(math.Round(base + (over-base)*a))
			}
		}
	}
	return dst
}

// grain adds monochrome noise from a fixed-seed generator, so the same
// frame always receives the same grain.
func (d Definition) grain(src *image.NRGBA) *image.NRGBA {
	dst := imaging.Clone(src)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	rng := rand.New(rand.NewPCG(d.Seed, uint64(w)<<32|uint64(h)))
	amp := d.Strength * 255

	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			n := (rng.Float64()*2 - 1) * amp
			i := x * 4
			for ch := 0; ch < 3; ch++ {
				row[i+ch] = uint8(math.Round(math.Min(math.Max(float64(row[i+ch])+n, 0), 255)))
			}
		}
	}
	return dst
}

// Get looks up an effect by id. The empty id means none.
func Get(id string) (Definition, error) {
	if id == "" {
		id = "none"
	}
	d, ok := byID[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w %q", ErrUnknown, id)
	}
	return d, nil
}

// All returns the catalog in display order.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}
