package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/AnyUserName/momento/internal/compose"
	"github.com/AnyUserName/momento/internal/encoder"
	"github.com/AnyUserName/momento/internal/frame"
	"github.com/AnyUserName/momento/internal/gifenc"
	"github.com/AnyUserName/momento/internal/layout"
	"github.com/AnyUserName/momento/internal/quantize"
	"github.com/AnyUserName/momento/internal/session"
	"github.com/AnyUserName/momento/internal/typeface"
)

// DefaultTemplate is used when Config.Template is empty.
const DefaultTemplate = "strip"

// Config holds all parameters for a session pipeline.
type Config struct {
	Template string
	Workers  int
	Verbose  bool

	// Animation settings. The GIF is skipped unless Animate is set.
	Animate   bool
	Delay     time.Duration
	Loop      int
	MaxColors int

	// Fonts defaults to the embedded Go fonts.
	Fonts  *typeface.Manager
	Locale language.Tag

	// GlyphColor fills sticker glyphs; nil means black.
	GlyphColor color.Color
	// Now stamps the template date; defaults to time.Now.
	Now func() time.Time
	// Registry encodes stills on export; defaults to encoder.NewRegistry.
	Registry *encoder.Registry
}

// Timings records how long each stage took.
type Timings struct {
	Composite time.Duration
	Layout    time.Duration
	Animate   time.Duration
}

// Result is everything produced for one session.
type Result struct {
	Token       session.Token
	Template    *layout.Template
	Decorations []frame.Decoration
	// Frames are the composited shots in capture order.
	Frames    []*image.NRGBA
	Composite *image.NRGBA
	// Animation is a GIF document, nil when animation is off.
	Animation []byte
	Delay     time.Duration
	Timings   Timings
}

// SessionToken ties the result to the session it was produced for.
func (r *Result) SessionToken() session.Token { return r.Token }

// ShotSize returns the size of the captured frames.
func (r *Result) ShotSize() image.Point {
	if len(r.Frames) == 0 {
		return image.Point{}
	}
	return r.Frames[0].Rect.Size()
}

// Pipeline turns captured shots into a template composite and an
// animation. It is safe for concurrent use; each Run is independent.
type Pipeline struct {
	cfg        Config
	compositor *compose.Compositor
	engine     *layout.Engine
	registry   *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}
	if cfg.Delay == 0 {
		cfg.Delay = gifenc.DefaultDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Locale == language.Und {
		cfg.Locale = language.AmericanEnglish
	}
	if cfg.Fonts == nil {
		fonts, err := typeface.New("")
		if err != nil {
			return nil, fmt.Errorf("load fonts: %w", err)
		}
		cfg.Fonts = fonts
	}
	reg := cfg.Registry
	if reg == nil {
		reg = encoder.NewRegistry()
	}
	var copts []compose.Option
	if cfg.GlyphColor != nil {
		copts = append(copts, compose.WithGlyphColor(cfg.GlyphColor))
	}
	return &Pipeline{
		cfg:        cfg,
		compositor: compose.New(cfg.Fonts, copts...),
		engine:     layout.NewEngine(cfg.Fonts, layout.WithClock(cfg.Now), layout.WithLocale(cfg.Locale)),
		registry:   reg,
	}, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[momento] "+format+"\n", args...)
	}
}

// Run composites every shot, then renders the template and encodes the
// animation concurrently. It returns either a complete Result or an error;
// a cancelled ctx yields ctx.Err().
func (p *Pipeline) Run(ctx context.Context, token session.Token, bufs []*frame.PixelBuffer) (*Result, error) {
	if err := frame.CheckUniform(bufs); err != nil {
		return nil, err
	}
	cat, err := layout.NewCatalog(len(bufs))
	if err != nil {
		return nil, err
	}
	tpl, err := cat.Get(p.cfg.Template)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Token:       token,
		Template:    tpl,
		Decorations: make([]frame.Decoration, len(bufs)),
		Frames:      make([]*image.NRGBA, len(bufs)),
		Delay:       p.cfg.Delay,
	}
	p.logf("session %d: %d shots %dx%d, template %s", token, len(bufs), bufs[0].Width(), bufs[0].Height(), tpl.ID)

	// Stage 1: composite every shot.
	start := time.Now()
	err = forEach(ctx, len(bufs), p.cfg.Workers, func(i int) error {
		res.Decorations[i] = bufs[i].Decoration()
		img, err := p.compositor.Composite(bufs[i])
		if err != nil {
			return fmt.Errorf("composite shot %d: %w", i, err)
		}
		res.Frames[i] = img
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Timings.Composite = time.Since(start)
	p.logf("composited %d shots in %s", len(bufs), res.Timings.Composite.Round(time.Millisecond))

	// Stage 2: layout and animation side by side.
	var (
		wg                 sync.WaitGroup
		layoutErr, animErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctx.Err(); err != nil {
			layoutErr = err
			return
		}
		t := time.Now()
		imgs := make([]image.Image, len(res.Frames))
		for i, f := range res.Frames {
			imgs[i] = f
		}
		res.Composite, layoutErr = p.engine.Render(tpl, imgs)
		res.Timings.Layout = time.Since(t)
	}()
	if p.cfg.Animate {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.Now()
			res.Animation, animErr = p.animate(ctx, res.Frames)
			res.Timings.Animate = time.Since(t)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if layoutErr != nil {
		return nil, fmt.Errorf("layout: %w", layoutErr)
	}
	if animErr != nil {
		return nil, fmt.Errorf("animate: %w", animErr)
	}
	p.logf("layout %s in %s", tpl.ID, res.Timings.Layout.Round(time.Millisecond))
	if p.cfg.Animate {
		p.logf("animation %d frames, %d bytes in %s", len(res.Frames), len(res.Animation), res.Timings.Animate.Round(time.Millisecond))
	}
	return res, nil
}

// animate quantizes every frame in parallel, then encodes them in order.
func (p *Pipeline) animate(ctx context.Context, frames []*image.NRGBA) ([]byte, error) {
	out := make([]gifenc.Frame, len(frames))
	opts := quantize.Options{MaxColors: p.cfg.MaxColors}
	err := forEach(ctx, len(frames), p.cfg.Workers, func(i int) error {
		pal, idx, err := quantize.Quantize(frames[i], opts)
		if err != nil {
			return fmt.Errorf("quantize frame %d: %w", i, err)
		}
		out[i] = gifenc.Frame{Palette: pal, Index: idx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return gifenc.Encode(out, gifenc.Options{Delay: p.cfg.Delay, Loop: p.cfg.Loop})
}

// forEach runs fn for 0..n-1 on at most workers goroutines. It returns
// ctx.Err() if the context ends first, otherwise the error of the lowest
// failing index.
func forEach(ctx context.Context, n, workers int, fn func(i int) error) error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}: // acquire
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-sem }() // release

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			errs[idx] = fn(idx)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return firstError(errs)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
