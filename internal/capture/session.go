// Package capture stands in for the live booth: it reads a session
// description and the shot files it names, and hands the pipeline one
// PixelBuffer per shot.
package capture

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/AnyUserName/momento/internal/effect"
	"github.com/AnyUserName/momento/internal/filter"
	"github.com/AnyUserName/momento/internal/frame"
)

// ErrNoShots is returned for a session without any shot.
var ErrNoShots = errors.New("capture: session has no shots")

// Duration is a time.Duration written as a string like "500ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Shot is one captured frame and the decoration chosen for it.
type Shot struct {
	File   string `toml:"file"`
	Filter string `toml:"filter"`
	Effect string `toml:"effect"`
	// Mirrored marks a file already stored the way the booth preview shows
	// it. Other files are flipped on load.
	Mirrored bool            `toml:"mirrored"`
	Stickers []frame.Sticker `toml:"sticker"`
}

// Decoration returns the shot's decoration snapshot.
func (s Shot) Decoration() frame.Decoration {
	return frame.Decoration{Filter: s.Filter, Effect: s.Effect, Stickers: s.Stickers}
}

// Session is a whole capture session as described in a session file.
type Session struct {
	Template string   `toml:"template"`
	Profile  string   `toml:"profile"`
	Delay    Duration `toml:"delay"`
	Locale   string   `toml:"locale"`
	Font     string   `toml:"font"`
	// GlyphColor is the "#rrggbb" fill of sticker glyphs; black if empty.
	GlyphColor string `toml:"glyph_color"`
	Shots      []Shot `toml:"shot"`

	// Dir is where relative shot paths are resolved.
	Dir string `toml:"-"`
}

// LoadSession parses a TOML session file. Unknown keys are rejected so a
// typo never silently drops a decoration.
func LoadSession(path string) (*Session, error) {
	var s Session
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("session %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	s.Dir = filepath.Dir(path)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("session %s: %w", path, err)
	}
	return &s, nil
}

// SessionFromDir builds an undecorated session from the image files in dir
// whose relative paths match pattern.
func SessionFromDir(dir, pattern string) (*Session, error) {
	sources, err := Scan(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	s := &Session{Dir: dir}
	for _, src := range sources {
		s.Shots = append(s.Shots, Shot{File: src.RelPath})
	}
	if len(s.Shots) == 0 {
		return nil, fmt.Errorf("%w: no images matching %q in %s", ErrNoShots, pattern, dir)
	}
	return s, nil
}

// Validate checks ids and sticker placements without touching any file.
func (s *Session) Validate() error {
	if len(s.Shots) == 0 {
		return ErrNoShots
	}
	if s.Delay.Duration < 0 {
		return fmt.Errorf("negative delay %s", s.Delay.Duration)
	}
	if _, err := s.StickerColor(); err != nil {
		return err
	}
	for i, sh := range s.Shots {
		if sh.File == "" {
			return fmt.Errorf("shot %d: missing file", i)
		}
		if _, err := filter.Get(sh.Filter); err != nil {
			return fmt.Errorf("shot %d: %w", i, err)
		}
		if _, err := effect.Get(sh.Effect); err != nil {
			return fmt.Errorf("shot %d: %w", i, err)
		}
		for j, st := range sh.Stickers {
			if !finite(st.X, st.Y, st.Scale, st.Rotation) {
				return fmt.Errorf("shot %d sticker %d: non-finite placement", i, j)
			}
			if st.X < 0 || st.X > 1 || st.Y < 0 || st.Y > 1 {
				return fmt.Errorf("shot %d sticker %d: position (%g,%g) outside [0,1]", i, j, st.X, st.Y)
			}
			if st.Scale < 0 {
				return fmt.Errorf("shot %d sticker %d: negative scale", i, j)
			}
		}
	}
	return nil
}

// StickerColor parses GlyphColor. It returns nil when none is set.
func (s *Session) StickerColor() (color.Color, error) {
	if s.GlyphColor == "" {
		return nil, nil
	}
	c, err := colorful.Hex(s.GlyphColor)
	if err != nil {
		return nil, fmt.Errorf("glyph_color %q: %w", s.GlyphColor, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 0xFF}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Path resolves a shot's file against the session directory.
func (s *Session) Path(sh Shot) string {
	if filepath.IsAbs(sh.File) || s.Dir == "" {
		return sh.File
	}
	return filepath.Join(s.Dir, sh.File)
}
