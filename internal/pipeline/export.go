package pipeline

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/momento/internal/gifenc"
	"github.com/AnyUserName/momento/internal/hasher"
	"github.com/AnyUserName/momento/internal/manifest"
	"github.com/AnyUserName/momento/internal/profile"
)

// ErrNothingExported is returned when no still format could be encoded.
var ErrNothingExported = errors.New("no still variant could be encoded")

// Export writes the composite in every profile width and format, plus the
// animation if there is one, and records them in a manifest written to
// dir. File names follow momento-<template>-<unix-millis>-<hash8>.<ext>.
func (p *Pipeline) Export(res *Result, dir string, prof profile.Profile, at time.Time) (*manifest.Manifest, error) {
	if res == nil || res.Composite == nil {
		return nil, errors.New("export: empty result")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	m := manifest.New(prof.Name)
	m.Session = sessionInfo(res, p.cfg.Locale.String())
	m.BuildInfo = &manifest.BuildInfo{
		Workers:     p.cfg.Workers,
		CompositeMS: res.Timings.Composite.Milliseconds(),
		LayoutMS:    res.Timings.Layout.Milliseconds(),
		AnimateMS:   res.Timings.Animate.Milliseconds(),
	}

	still, err := p.exportStill(res, dir, prof, at)
	if err != nil {
		return nil, err
	}
	m.Assets["composite"] = still

	if res.Animation != nil {
		anim, err := exportAnimation(res, dir, at)
		if err != nil {
			return nil, err
		}
		m.Assets["animation"] = anim
	}

	if err := manifest.WriteJSON(m, filepath.Join(dir, manifest.FileName)); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

func (p *Pipeline) exportStill(res *Result, dir string, prof profile.Profile, at time.Time) (manifest.Asset, error) {
	img := res.Composite
	origW, origH := img.Rect.Dx(), img.Rect.Dy()
	avg := computeAvgColor(img)
	asset := manifest.Asset{
		Kind:        "composite",
		Width:       origW,
		Height:      origH,
		AspectRatio: float64(origW) / float64(origH),
		AvgColor:    &avg,
	}

	formats := p.registry.ResolveFormats(prof.Formats)
	for _, w := range prof.EffectiveWidths(origW) {
		h := int(float64(origH) * float64(w) / float64(origW))
		if h < 1 {
			h = 1
		}
		var src image.Image = img
		if w != origW {
			src = imaging.Resize(img, w, h, imaging.Lanczos)
		}

		for _, format := range formats {
			enc := p.registry.Get(format)
			if enc == nil {
				continue
			}
			data, err := enc.Encode(src, prof.Quality)
			if err != nil {
				p.logf("warn: encode %s@%dx%d as %s: %v", res.Template.ID, w, h, format, err)
				continue
			}
			name := hasher.ExportName(res.Template.ID, at, data, enc.Extension())
			if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
				return asset, fmt.Errorf("write %s: %w", name, err)
			}
			p.logf("wrote %s (%d bytes)", name, len(data))
			asset.Variants = append(asset.Variants, manifest.Variant{
				Format:    enc.Format(),
				MediaType: enc.MediaType(),
				Width:     w,
				Height:    h,
				Size:      int64(len(data)),
				Hash:      hasher.ContentHash(data, 16),
				Path:      name,
			})
		}
	}
	if len(asset.Variants) == 0 {
		return asset, ErrNothingExported
	}
	return asset, nil
}

func exportAnimation(res *Result, dir string, at time.Time) (manifest.Asset, error) {
	size := res.ShotSize()
	name := hasher.ExportName("anim", at, res.Animation, "gif")
	if err := os.WriteFile(filepath.Join(dir, name), res.Animation, 0o644); err != nil {
		return manifest.Asset{}, fmt.Errorf("write %s: %w", name, err)
	}
	return manifest.Asset{
		Kind:        "animation",
		Width:       size.X,
		Height:      size.Y,
		AspectRatio: float64(size.X) / float64(size.Y),
		Frames:      len(res.Frames),
		DelayMS:     res.Delay.Milliseconds(),
		Variants: []manifest.Variant{{
			Format:    "gif",
			MediaType: gifenc.MediaType,
			Width:     size.X,
			Height:    size.Y,
			Size:      int64(len(res.Animation)),
			Hash:      hasher.ContentHash(res.Animation, 16),
			Path:      name,
		}},
	}, nil
}

func sessionInfo(res *Result, locale string) *manifest.SessionInfo {
	size := res.ShotSize()
	info := &manifest.SessionInfo{
		Token:    uint64(res.Token),
		Template: res.Template.ID,
		Frames:   len(res.Frames),
		Width:    size.X,
		Height:   size.Y,
		Locale:   locale,
	}
	for _, d := range res.Decorations {
		f, e := d.Filter, d.Effect
		if f == "" {
			f = "normal"
		}
		if e == "" {
			e = "none"
		}
		info.Filters = append(info.Filters, f)
		info.Effects = append(info.Effects, e)
	}
	return info
}

// computeAvgColor calculates the average RGB color of an image.
func computeAvgColor(img *image.NRGBA) [3]uint8 {
	b := img.Rect
	count := uint64(b.Dx()) * uint64(b.Dy())
	if count == 0 {
		return [3]uint8{}
	}
	var rSum, gSum, bSum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			rSum += uint64(row[x*4])
			gSum += uint64(row[x*4+1])
			bSum += uint64(row[x*4+2])
		}
	}
	return [3]uint8{
		uint8(rSum / count),
		uint8(gSum / count),
		uint8(bSum / count),
	}
}
