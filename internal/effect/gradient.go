package effect

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Stop is one gradient color stop. Pos is in [0,1] along the gradient line,
// Alpha is the stop's opacity.
type Stop struct {
	Pos   float64
	Color colorful.Color
	Alpha float64
}

// Gradient is a linear gradient between two points in pixel space. Stops
// must be sorted by Pos.
type Gradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

// AngleGradient builds a gradient the way a stylesheet's
// linear-gradient(<angle>deg, ...) lays it out over a w×h box: 0deg points
// up, angles turn clockwise, and the line is long enough for the corners
// to hit the first and last stops.
func AngleGradient(deg float64, w, h int, stops ...Stop) Gradient {
	rad := deg * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(float64(w)*dx) + math.Abs(float64(h)*dy)) / 2
	cx, cy := float64(w)/2, float64(h)/2
	return Gradient{
		X0: cx - dx*half, Y0: cy - dy*half,
		X1: cx + dx*half, Y1: cy + dy*half,
		Stops: stops,
	}
}

// At samples the gradient at pixel center (x+0.5, y+0.5).
func (g Gradient) At(x, y int) (colorful.Color, float64) {
	vx, vy := g.X1-g.X0, g.Y1-g.Y0
	l2 := vx*vx + vy*vy
	t := 0.0
	if l2 > 0 {
		t = ((float64(x)+0.5-g.X0)*vx + (float64(y)+0.5-g.Y0)*vy) / l2
	}
	return g.sample(t)
}

func (g Gradient) sample(t float64) (colorful.Color, float64) {
	if len(g.Stops) == 0 {
		return colorful.Color{}, 0
	}
	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if t <= first.Pos {
		return first.Color, first.Alpha
	}
	if t >= last.Pos {
		return last.Color, last.Alpha
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t > b.Pos {
			continue
		}
		span := b.Pos - a.Pos
		if span <= 0 {
			return b.Color, b.Alpha
		}
		f := (t - a.Pos) / span
		return a.Color.BlendRgb(b.Color, f), a.Alpha + (b.Alpha-a.Alpha)*f
	}
	return last.Color, last.Alpha
}

// Hex parses "#rrggbb" and panics on malformed input; it is meant for
// catalog literals only.
func Hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
