package layout

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/AnyUserName/momento/internal/effect"
	"github.com/AnyUserName/momento/internal/typeface"
)

// DefaultSlots is the number of shots in a standard session.
const DefaultSlots = 4

// ErrSlotCount is returned by NewCatalog for a non-positive slot count.
var ErrSlotCount = errors.New("layout: slot count must be positive")

// Catalog is the fixed set of templates built for one slot count.
type Catalog struct {
	slots     int
	templates []*Template
	byID      map[string]*Template
}

// NewCatalog builds every template for n slots. The authored geometry is
// for four; other counts add or remove whole rows.
func NewCatalog(n int) (*Catalog, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrSlotCount, n)
	}
	c := &Catalog{
		slots: n,
		templates: []*Template{
			strip(n),
			grid(n),
			film(n),
			collage(n),
		},
		byID: make(map[string]*Template, 4),
	}
	for _, t := range c.templates {
		c.byID[t.ID] = t
	}
	return c, nil
}

// Slots returns the slot count every template in c was built for.
func (c *Catalog) Slots() int { return c.slots }

// All returns the templates in display order.
func (c *Catalog) All() []*Template {
	out := make([]*Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get looks a template up by id.
func (c *Catalog) Get(id string) (*Template, error) {
	t, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// IDs returns the template ids in display order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.templates))
	for i, t := range c.templates {
		ids[i] = t.ID
	}
	return ids
}

var (
	white = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black = color.NRGBA{0x00, 0x00, 0x00, 0xFF}
)

func rows(n int) int { return (n + 1) / 2 }

func solid(c color.NRGBA) Painter {
	return func(dst *image.NRGBA, _ Env) error {
		fillRect(dst, dst.Rect, c)
		return nil
	}
}

// strip: a dark vertical strip of bordered photos with a typewriter footer.
func strip(n int) *Template {
	const (
		photoW, photoH = 600, 450
		gap, pad       = 30, 40
	)
	t := &Template{
		ID: "strip", Name: "Classic", Icon: "🎞️",
		Width:      680,
		Height:     2400 + (n-DefaultSlots)*(photoH+gap),
		Background: solid(color.NRGBA{0x11, 0x11, 0x11, 0xFF}),
	}
	for i := 0; i < n; i++ {
		y := pad + i*(photoH+gap)
		t.Slots = append(t.Slots, Slot{
			Rect:   image.Rect(pad, y, pad+photoW, y+photoH),
			Border: 10,
			Mat:    white,
		})
	}
	footer := float64(t.Height - 150)
	t.Chrome = func(dst *image.NRGBA, env Env) error {
		if err := text(dst, env.Fonts, typeface.MonoBold, 60, "MOMENTO.", 340, footer, typeface.Center, white); err != nil {
			return err
		}
		return text(dst, env.Fonts, typeface.Mono, 30, env.Date, 340, footer+50, typeface.Center, color.NRGBA{0x88, 0x88, 0x88, 0xFF})
	}
	return t
}

// grid: a polaroid sheet, two photos per row on lightly speckled paper.
func grid(n int) *Template {
	const (
		photoW, photoH = 580, 435
		pad, gap       = 60, 20
	)
	t := &Template{
		ID: "grid", Name: "Polaroid", Icon: "▦",
		Width:  1300,
		Height: 1600 + (rows(n)-rows(DefaultSlots))*(photoH+gap),
	}
	for i := 0; i < n; i++ {
		col, row := i%2, i/2
		x := pad + col*(photoW+gap)
		y := pad + row*(photoH+gap)
		t.Slots = append(t.Slots, Slot{Rect: image.Rect(x, y, x+photoW, y+photoH)})
	}
	specks := 1000 * t.Width * t.Height / (1300 * 1600)
	t.Background = func(dst *image.NRGBA, _ Env) error {
		fillRect(dst, dst.Rect, white)
		paintSpecks(dst, specks, 0x706f6c61726f6964)
		return nil
	}
	footer := float64(t.Height - 200)
	t.Chrome = func(dst *image.NRGBA, env Env) error {
		if err := text(dst, env.Fonts, typeface.BoldItalic, 80, "Momento", 650, footer, typeface.Center, color.NRGBA{0x22, 0x22, 0x22, 0xFF}); err != nil {
			return err
		}
		return text(dst, env.Fonts, typeface.Regular, 40, env.Date, 650, footer+80, typeface.Center, color.NRGBA{0x66, 0x66, 0x66, 0xFF})
	}
	return t
}

// paintSpecks scatters 2×2 specks of 2% black from a fixed seed, so the
// paper texture is the same on every render.
func paintSpecks(dst *image.NRGBA, count int, seed uint64) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	rng := rand.New(rand.NewPCG(seed, uint64(w)<<32|uint64(h)))
	speck := color.NRGBA{0, 0, 0, 5}
	for i := 0; i < count; i++ {
		x, y := rng.IntN(w), rng.IntN(h)
		fillRect(dst, image.Rect(x, y, x+2, y+2), speck)
	}
}

// film: a black film strip with sprocket holes and a red date imprint.
func film(n int) *Template {
	const (
		photoW, photoH = 560, 420
		startY, gap    = 100, 150
	)
	t := &Template{
		ID: "film", Name: "Cinema", Icon: "🎬",
		Width:  800,
		Height: 2400 + (n-DefaultSlots)*(photoH+gap),
	}
	for i := 0; i < n; i++ {
		y := startY + i*(photoH+gap)
		t.Slots = append(t.Slots, Slot{Rect: image.Rect(120, y, 120+photoW, y+photoH)})
	}
	t.Background = func(dst *image.NRGBA, _ Env) error {
		fillRect(dst, dst.Rect, black)
		for y := 50; y < dst.Rect.Dy(); y += 120 {
			fillRect(dst, image.Rect(30, y, 80, y+80), white)
			fillRect(dst, image.Rect(720, y, 770, y+80), white)
		}
		return nil
	}
	stamp := float64(t.Height - 100)
	t.Chrome = func(dst *image.NRGBA, env Env) error {
		face, err := env.Fonts.Face(typeface.Mono, 40)
		if err != nil {
			return err
		}
		defer face.Close()
		glowText(dst, face, env.Date, 650, stamp, typeface.Right,
			color.NRGBA{0xFF, 0x55, 0x55, 0xFF}, color.NRGBA{0xFF, 0x00, 0x00, 0xFF}, 10)
		return nil
	}
	return t
}

// collagePlacement returns the top-left corner and tilt in radians of slot
// i. The first four match the authored scatter; later slots repeat it one
// row further down.
func collagePlacement(i int) (int, int, float64) {
	tilts := [4]float64{-0.1, 0.1, 0.05, -0.05}
	col, row := i%2, i/2
	x := 50 + col*550 + (row%2)*50
	y := 50 + row*550 + col*50
	return x, y, tilts[i%4]
}

// collage: tilted, shadowed snapshots scattered over a neon gradient.
func collage(n int) *Template {
	const photoW, photoH = 500, 400
	t := &Template{
		ID: "collage", Name: "Y2K", Icon: "✨",
		Width:  1200,
		Height: 1800 + (rows(n)-rows(DefaultSlots))*550,
	}
	for i := 0; i < n; i++ {
		x, y, tilt := collagePlacement(i)
		t.Slots = append(t.Slots, Slot{
			Rect:     image.Rect(x, y, x+photoW, y+photoH),
			Rotation: tilt * 180 / math.Pi,
			Border:   10,
			Mat:      white,
			Shadow:   &Shadow{Color: color.NRGBA{0, 0, 0, 0x80}, Blur: 20},
		})
	}
	g := effect.Gradient{
		X0: 0, Y0: 0, X1: float64(t.Width), Y1: float64(t.Height),
		Stops: []effect.Stop{
			{Pos: 0, Color: effect.Hex("#ff00cc"), Alpha: 1},
			{Pos: 1, Color: effect.Hex("#333399"), Alpha: 1},
		},
	}
	t.Background = func(dst *image.NRGBA, _ Env) error {
		paintGradient(dst, g)
		return nil
	}
	footer := float64(t.Height - 200)
	t.Chrome = func(dst *image.NRGBA, env Env) error {
		return text(dst, env.Fonts, typeface.Bold, 120, "XOXO", 600, footer, typeface.Center, white)
	}
	return t
}
