package layout

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/AnyUserName/momento/internal/typeface"
)

var fixedNow = time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	fonts, err := typeface.New("")
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEngine(fonts, opts...)
}

func newCatalog(t *testing.T, n int) *Catalog {
	t.Helper()
	c, err := NewCatalog(n)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func solidImage(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

var sessionColors = []color.NRGBA{
	{0xFF, 0x00, 0x00, 0xFF},
	{0x00, 0xFF, 0x00, 0xFF},
	{0x00, 0x00, 0xFF, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
}

func sessionFrames(n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = solidImage(640, 480, sessionColors[i%len(sessionColors)])
	}
	return out
}

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v >= -tol && v <= tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestCatalog_CanvasSizes(t *testing.T) {
	want := map[string]image.Point{
		"strip":   {680, 2400},
		"grid":    {1300, 1600},
		"film":    {800, 2400},
		"collage": {1200, 1800},
	}
	e := newEngine(t)
	c := newCatalog(t, 4)
	if ids := c.IDs(); len(ids) != 4 || ids[0] != "strip" || ids[3] != "collage" {
		t.Fatalf("ids %v", ids)
	}
	for _, tpl := range c.All() {
		t.Run(tpl.ID, func(t *testing.T) {
			if tpl.Size() != want[tpl.ID] {
				t.Errorf("descriptor size %v, want %v", tpl.Size(), want[tpl.ID])
			}
			out, err := e.Render(tpl, sessionFrames(4))
			if err != nil {
				t.Fatal(err)
			}
			if out.Bounds().Size() != want[tpl.ID] {
				t.Errorf("canvas %v, want %v", out.Bounds().Size(), want[tpl.ID])
			}
		})
	}
}

func TestCatalog_SlotsInsideCanvas(t *testing.T) {
	for n := 1; n <= 8; n++ {
		c := newCatalog(t, n)
		for _, tpl := range c.All() {
			if len(tpl.Slots) != n {
				t.Errorf("n=%d %s: %d slots", n, tpl.ID, len(tpl.Slots))
			}
			canvas := image.Rect(0, 0, tpl.Width, tpl.Height)
			for i, s := range tpl.Slots {
				if !s.Rect.Inset(-s.Border).In(canvas) {
					t.Errorf("n=%d %s slot %d %v outside %v", n, tpl.ID, i, s.Rect, canvas)
				}
			}
		}
	}
}

func TestNewCatalog_RejectsZero(t *testing.T) {
	if _, err := NewCatalog(0); !errors.Is(err, ErrSlotCount) {
		t.Errorf("want ErrSlotCount, got %v", err)
	}
}

func TestCatalog_Get(t *testing.T) {
	c := newCatalog(t, 4)
	tpl, err := c.Get("film")
	if err != nil || tpl.Name != "Cinema" {
		t.Fatalf("Get(film) = %v, %v", tpl, err)
	}
	if _, err := c.Get("mosaic"); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("want ErrUnknownTemplate, got %v", err)
	}
}

func TestRender_CountMismatch(t *testing.T) {
	e := newEngine(t)
	tpl, _ := newCatalog(t, 4).Get("strip")
	out, err := e.Render(tpl, sessionFrames(3))
	if out != nil {
		t.Error("partial output returned")
	}
	var ce *CountError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CountError, got %v", err)
	}
	if ce.Template != "strip" || ce.Want != 4 || ce.Got != 3 {
		t.Errorf("got %+v", ce)
	}
}

func TestRender_StripScenario(t *testing.T) {
	e := newEngine(t)
	tpl, _ := newCatalog(t, 4).Get("strip")
	out, err := e.Render(tpl, sessionFrames(4))
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range tpl.Slots {
		r := s.Rect.Inset(20)
		for _, p := range []image.Point{r.Min, r.Max.Sub(image.Pt(1, 1)), {(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}} {
			if got := out.NRGBAAt(p.X, p.Y); !near(got, sessionColors[i], 2) {
				t.Errorf("slot %d at %v: %v, want %v", i, p, got, sessionColors[i])
			}
		}
		if got := out.NRGBAAt(s.Rect.Min.X-5, s.Rect.Min.Y+100); got != white {
			t.Errorf("slot %d border: %v", i, got)
		}
	}

	bg := color.NRGBA{0x11, 0x11, 0x11, 0xFF}
	ink := func(y0, y1 int) int {
		n := 0
		for y := y0; y < y1; y++ {
			for x := 0; x < out.Rect.Dx(); x++ {
				if out.NRGBAAt(x, y) != bg {
					n++
				}
			}
		}
		return n
	}
	if n := ink(1950, 2190); n != 0 {
		t.Errorf("%d stray pixels between the last slot and the footer", n)
	}
	if n := ink(2190, 2320); n < 500 {
		t.Errorf("footer band has only %d ink pixels", n)
	}
	if n := ink(2320, 2400); n != 0 {
		t.Errorf("%d ink pixels below the date", n)
	}
}

func TestRender_CollageSlotCenters(t *testing.T) {
	e := newEngine(t)
	tpl, _ := newCatalog(t, 4).Get("collage")
	out, err := e.Render(tpl, sessionFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range tpl.Slots {
		c := image.Pt((s.Rect.Min.X+s.Rect.Max.X)/2, (s.Rect.Min.Y+s.Rect.Max.Y)/2)
		if got := out.NRGBAAt(c.X, c.Y); !near(got, sessionColors[i], 3) {
			t.Errorf("slot %d center %v: %v, want %v", i, c, got, sessionColors[i])
		}
	}
	// Background corners carry the gradient end colors.
	if got := out.NRGBAAt(0, 0); !near(got, color.NRGBA{0xFF, 0x00, 0xCC, 0xFF}, 2) {
		t.Errorf("top-left %v", got)
	}
	if got := out.NRGBAAt(1199, 1799); !near(got, color.NRGBA{0x33, 0x33, 0x99, 0xFF}, 2) {
		t.Errorf("bottom-right %v", got)
	}
}

func TestRender_FilmSprockets(t *testing.T) {
	e := newEngine(t)
	tpl, _ := newCatalog(t, 4).Get("film")
	out, err := e.Render(tpl, sessionFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{40, 60}, {760, 60}, {40, 2330}} {
		if got := out.NRGBAAt(p.X, p.Y); got != white {
			t.Errorf("sprocket at %v: %v", p, got)
		}
	}
	if got := out.NRGBAAt(100, 60); got != black {
		t.Errorf("strip at (100,60): %v", got)
	}
	// The date glow tints pixels right of center near the stamp.
	var red int
	for y := 2250; y < 2320; y++ {
		for x := 400; x < 660; x++ {
			if c := out.NRGBAAt(x, y); c.R > 0x40 && c.G < c.R/2 {
				red++
			}
		}
	}
	if red < 200 {
		t.Errorf("date stamp has only %d red pixels", red)
	}
}

func TestRender_GridDeterministic(t *testing.T) {
	e := newEngine(t)
	tpl, _ := newCatalog(t, 4).Get("grid")
	a, err := e.Render(tpl, sessionFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Render(tpl, sessionFrames(4))
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("grid render is not deterministic")
	}
	var specks int
	for y := 1000; y < 1300; y++ {
		for x := 0; x < 1300; x++ {
			if c := a.NRGBAAt(x, y); c != white && c.R > 0xF0 {
				specks++
			}
		}
	}
	if specks == 0 {
		t.Error("no paper texture found")
	}
}

func TestRender_EmptyFrame(t *testing.T) {
	e := newEngine(t)
	tpl, _ := newCatalog(t, 1).Get("strip")
	if _, err := e.Render(tpl, []image.Image{image.NewNRGBA(image.Rect(0, 0, 0, 0))}); err == nil {
		t.Error("empty frame accepted")
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "3/7/2026"},
		{"en-GB", "07/03/2026"},
		{"de-DE", "7.3.2026"},
		{"ja", "2026/3/7"},
		{"sv", "2026-03-07"},
		{"", "3/7/2026"},
	}
	for _, tt := range tests {
		tag, err := ParseLocale(tt.locale)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatDate(fixedNow, tag); got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.locale, got, tt.want)
		}
	}
	if _, err := ParseLocale("not a locale!"); err == nil {
		t.Error("invalid locale accepted")
	}
}

func TestRender_LocaleChangesDate(t *testing.T) {
	tpl, _ := newCatalog(t, 4).Get("strip")
	us, err := newEngine(t).Render(tpl, sessionFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	de, err := newEngine(t, WithLocale(language.German)).Render(tpl, sessionFrames(4))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(us.Pix, de.Pix) {
		t.Error("locale did not affect the date stamp")
	}
}
