package profile

import (
	"sort"
	"time"
)

// Profile defines how a session is exported.
type Profile struct {
	Name    string
	Widths  []int    // still widths; 0 means the canvas width
	Formats []string // still formats in priority order
	Quality int      // encoding quality 1-100
	// Animation settings.
	Animate   bool
	Delay     time.Duration
	Loop      int // 0 = forever
	MaxColors int // 0 = 256
}

// Built-in profiles.
var profiles = map[string]Profile{
	"share": {
		Name:      "share",
		Widths:    []int{0, 1080},
		Formats:   []string{"webp", "jpeg"},
		Quality:   85,
		Animate:   true,
		Delay:     500 * time.Millisecond,
		MaxColors: 256,
	},
	"print": {
		Name:    "print",
		Widths:  []int{0},
		Formats: []string{"png", "jpeg"},
		Quality: 95,
		Animate: false,
	},
	"minimal": {
		Name:      "minimal",
		Widths:    []int{720},
		Formats:   []string{"jpeg"},
		Quality:   78,
		Animate:   true,
		Delay:     500 * time.Millisecond,
		MaxColors: 128,
	},
}

// DefaultName is the profile used when none is requested.
const DefaultName = "share"

// Get returns a profile by name. Falls back to share if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return clone(p)
	}
	p := clone(profiles[DefaultName])
	p.Name = name // preserve requested name
	return p
}

// Lookup is Get without the fallback.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, false
	}
	return clone(p), true
}

// Names lists the built-in profiles alphabetically.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func clone(p Profile) Profile {
	p.Widths = append([]int(nil), p.Widths...)
	p.Formats = append([]string(nil), p.Formats...)
	return p
}

// EffectiveWidths resolves the still widths for a canvas, never upscaling
// and dropping duplicates.
func (p Profile) EffectiveWidths(canvasWidth int) []int {
	seen := map[int]bool{}
	var result []int

	for _, w := range p.Widths {
		if w == 0 {
			w = canvasWidth
		}
		if w > canvasWidth || w <= 0 {
			continue // don't upscale
		}
		if !seen[w] {
			seen[w] = true
			result = append(result, w)
		}
	}

	// Always include the canvas width when every target was larger.
	if len(result) == 0 && canvasWidth > 0 {
		result = append(result, canvasWidth)
	}
	return result
}
