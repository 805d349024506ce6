// Package filter implements the color-grade filters a shot can be captured
// with. A filter is an ordered chain of standard operators applied per pixel;
// results are clamped to [0,255] after every operator.
package filter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknown is returned by Get for ids missing from the catalog.
var ErrUnknown = errors.New("filter: unknown filter")

// Kind names one color operator.
type Kind string

const (
	Grayscale  Kind = "grayscale"
	HueRotate  Kind = "hue-rotate" // Amount in degrees
	Saturate   Kind = "saturate"
	Sepia      Kind = "sepia"
	Contrast   Kind = "contrast"
	Brightness Kind = "brightness"
)

// Op is one operator with its intensity. For grayscale and sepia the amount
// is a mix factor in [0,1]; saturate, contrast and brightness take a
// multiplier where 1 is identity.
type Op struct {
	Kind   Kind
	Amount float64
}

// Definition is an immutable catalog entry.
type Definition struct {
	ID   string
	Name string
	Ops  []Op
}

// Identity reports whether the chain leaves pixels untouched.
func (d Definition) Identity() bool { return len(d.Ops) == 0 }

// Apply runs the chain over img and returns a new raster. Alpha is kept.
func (d Definition) Apply(img image.Image) *image.NRGBA {
	if d.Identity() {
		return imaging.Clone(img)
	}
	stages := compile(d.Ops)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		v := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
		for _, s := range stages {
			v = s(v)
			v[0], v[1], v[2] = clamp255(v[0]), clamp255(v[1]), clamp255(v[2])
		}
		return color.NRGBA{R: round8(v[0]), G: round8(v[1]), B: round8(v[2]), A: c.A}
	})
}

type stage func([3]float64) [3]float64

func compile(ops []Op) []stage {
	stages := make([]stage, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case Grayscale:
			stages = append(stages, matrixStage(mix(luma709, clamp01(op.Amount))))
		case Sepia:
			stages = append(stages, matrixStage(mix(sepiaTone, clamp01(op.Amount))))
		case Saturate:
			// saturate(s) interpolates from full desaturation (s=0) to
			// identity (s=1) and extrapolates beyond it.
			stages = append(stages, matrixStage(mix(lumaSaturate, 1-math.Max(op.Amount, 0))))
		case HueRotate:
			stages = append(stages, hueStage(op.Amount))
		case Contrast:
			a := math.Max(op.Amount, 0)
			stages = append(stages, func(v [3]float64) [3]float64 {
				return [3]float64{(v[0]-128)*a + 128, (v[1]-128)*a + 128, (v[2]-128)*a + 128}
			})
		case Brightness:
			a := math.Max(op.Amount, 0)
			stages = append(stages, func(v [3]float64) [3]float64 {
				return [3]float64{v[0] * a, v[1] * a, v[2] * a}
			})
		}
	}
	return stages
}

var (
	luma709 = mat.NewDense(3, 3, []float64{
		0.2126, 0.7152, 0.0722,
		0.2126, 0.7152, 0.0722,
		0.2126, 0.7152, 0.0722,
	})
	lumaSaturate = mat.NewDense(3, 3, []float64{
		0.213, 0.715, 0.072,
		0.213, 0.715, 0.072,
		0.213, 0.715, 0.072,
	})
	sepiaTone = mat.NewDense(3, 3, []float64{
		0.393, 0.769, 0.189,
		0.349, 0.686, 0.168,
		0.272, 0.534, 0.131,
	})
)

// mix returns (1-t)·I + t·target.
func mix(target *mat.Dense, t float64) [9]float64 {
	var id, tgt, m mat.Dense
	id.Scale(1-t, identity3())
	tgt.Scale(t, target)
	m.Add(&id, &tgt)

	var out [9]float64
	copy(out[:], m.RawMatrix().Data)
	return out
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func matrixStage(m [9]float64) stage {
	return func(v [3]float64) [3]float64 {
		return [3]float64{
			m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
			m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
			m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
		}
	}
}

func hueStage(deg float64) stage {
	return func(v [3]float64) [3]float64 {
		c := colorful.Color{R: v[0] / 255, G: v[1] / 255, B: v[2] / 255}
		h, s, l := c.Hsl()
		h = math.Mod(h+deg, 360)
		if h < 0 {
			h += 360
		}
		r := colorful.Hsl(h, s, l).Clamped()
		return [3]float64{r.R * 255, r.G * 255, r.B * 255}
	}
}

func clamp01(v float64) float64 { return math.Min(math.Max(v, 0), 1) }

func clamp255(v float64) float64 { return math.Min(math.Max(v, 0), 255) }

func round8(v float64) uint8 { return uint8(math.Round(clamp255(v))) }

// String renders the chain the way it reads in a stylesheet, e.g.
// "sepia(80%) contrast(90%)".
func (d Definition) String() string {
	if d.Identity() {
		return "none"
	}
	s := ""
	for i, op := range d.Ops {
		if i > 0 {
			s += " "
		}
		if op.Kind == HueRotate {
			s += fmt.Sprintf("%s(%gdeg)", op.Kind, op.Amount)
		} else {
			s += fmt.Sprintf("%s(%g%%)", op.Kind, math.Round(op.Amount*100))
		}
	}
	return s
}
