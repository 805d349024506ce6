package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/momento/internal/capture"
	"github.com/AnyUserName/momento/internal/layout"
	"github.com/AnyUserName/momento/internal/manifest"
	"github.com/AnyUserName/momento/internal/pipeline"
	"github.com/AnyUserName/momento/internal/profile"
	"github.com/AnyUserName/momento/internal/session"
	"github.com/AnyUserName/momento/internal/typeface"
)

var (
	composeOutDir   string
	composeTemplate string
	composeProfile  string
	composeDelay    time.Duration
	composeWorkers  int
	composeLocale   string
	composeFont     string
	composeGlob     string
	composeNoAnim   bool
	composeColor    string
)

var composeCmd = &cobra.Command{
	Use:   "compose <session.toml | frames_dir>",
	Short: "Composite a capture session into a template print and a GIF",
	Long: `Reads a session file (TOML, one [[shot]] per frame with its filter,
effect and stickers) or a directory of frames, then renders the chosen
template and the animated GIF and writes them with a manifest.

Frames from a directory are taken undecorated in path order. Files are
treated as raw selfie captures and un-mirrored unless a shot sets
mirrored = true.

Output filenames: momento-<template>-<unix-millis>-<hash8>.<ext>`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	f := composeCmd.Flags()
	f.StringVarP(&composeOutDir, "out", "o", "./momento_out", "output directory")
	f.StringVarP(&composeTemplate, "template", "t", "", "template id (default from session, then "+pipeline.DefaultTemplate+")")
	f.StringVarP(&composeProfile, "profile", "p", "", "export profile (default from session, then "+profile.DefaultName+")")
	f.DurationVar(&composeDelay, "delay", 0, "GIF frame delay (0 = session or profile default)")
	f.IntVarP(&composeWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.StringVar(&composeLocale, "locale", "", "BCP 47 locale for the printed date")
	f.StringVar(&composeFont, "font", "", "OpenType font for sticker glyphs")
	f.StringVar(&composeGlob, "glob", "**", "frame file pattern when reading a directory")
	f.StringVar(&composeColor, "glyph-color", "", "sticker glyph fill as #rrggbb (default from session, then black)")
	f.BoolVar(&composeNoAnim, "no-anim", false, "skip the animated GIF")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	start := time.Now()

	sess, err := loadSession(args[0])
	if err != nil {
		return err
	}
	applyOverrides(sess)
	glyphColor, err := sess.StickerColor()
	if err != nil {
		return err
	}

	prof, ok := profile.Lookup(sess.Profile)
	if !ok {
		if sess.Profile != "" {
			return fmt.Errorf("unknown profile %q (have %s)", sess.Profile, strings.Join(profile.Names(), ", "))
		}
		prof = profile.Get(profile.DefaultName)
	}
	delay := prof.Delay
	if sess.Delay.Duration > 0 {
		delay = sess.Delay.Duration
	}

	locale, err := layout.ParseLocale(sess.Locale)
	if err != nil {
		return err
	}
	fonts, err := typeface.New(sess.Font)
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	absOutput, err := filepath.Abs(composeOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	logVerbose("session:  %d shots from %s", len(sess.Shots), sess.Dir)
	logVerbose("output:   %s", absOutput)
	logVerbose("profile:  %s (widths=%v, formats=%v, quality=%d)", prof.Name, prof.Widths, prof.Formats, prof.Quality)
	logVerbose("template: %s, locale %s, delay %s", sess.Template, locale, delay)

	bufs, err := sess.Frames()
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Config{
		Template:   sess.Template,
		Workers:    composeWorkers,
		Verbose:    verbose,
		Animate:    prof.Animate && !composeNoAnim,
		Delay:      delay,
		Loop:       prof.Loop,
		MaxColors:  prof.MaxColors,
		Fonts:      fonts,
		Locale:     locale,
		GlyphColor: glyphColor,
	})
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tracker session.Tracker
	defer tracker.Stop()
	display := session.NewDisplay[*pipeline.Result](&tracker)

	token, ctx := tracker.Begin(sigCtx)
	res, err := p.Run(ctx, token, bufs)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("session %d cancelled", token)
		}
		return fmt.Errorf("pipeline: %w", err)
	}
	if !display.Offer(res) {
		return fmt.Errorf("session %d was superseded", token)
	}
	shown, _ := display.Shown()

	m, err := p.Export(shown, absOutput, prof, time.Now())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	printComposeReport(stdout(), m, shown, time.Since(start))
	return nil
}

func loadSession(path string) (*capture.Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve input path: %w", err)
		}
		return capture.SessionFromDir(abs, composeGlob)
	}
	return capture.LoadSession(path)
}

func applyOverrides(s *capture.Session) {
	if composeTemplate != "" {
		s.Template = composeTemplate
	}
	if composeProfile != "" {
		s.Profile = composeProfile
	}
	if composeDelay > 0 {
		s.Delay.Duration = composeDelay
	}
	if composeLocale != "" {
		s.Locale = composeLocale
	}
	if composeFont != "" {
		s.Font = composeFont
	}
	if composeColor != "" {
		s.GlyphColor = composeColor
	}
}

func printComposeReport(t *term, m *manifest.Manifest, res *pipeline.Result, elapsed time.Duration) {
	t.printf("\n  %s\n\n", t.bold("momento compose complete"))

	size := res.ShotSize()
	t.printf("  Session:     #%d, %d shots %dx%d\n", res.Token, len(res.Frames), size.X, size.Y)
	t.printf("  Template:    %s (%dx%d)\n", res.Template.Name, res.Template.Width, res.Template.Height)
	t.printf("  Profile:     %s\n", m.Profile)
	t.printf("  Variants:    %d\n", m.Stats.TotalVariants)
	t.printf("  Output size: %s\n", formatBytes(m.Stats.TotalOutputBytes))
	t.printf("  Time:        %s %s\n", elapsed.Round(time.Millisecond),
		t.dim(fmt.Sprintf("(composite %s, layout %s, gif %s)",
			res.Timings.Composite.Round(time.Millisecond),
			res.Timings.Layout.Round(time.Millisecond),
			res.Timings.Animate.Round(time.Millisecond))))
	t.printf("\n")

	for _, key := range []string{"composite", "animation"} {
		a, ok := m.Assets[key]
		if !ok {
			continue
		}
		for _, v := range a.Variants {
			t.printf("    %s %-48s %5dx%-5d %9s\n", t.ok("✓"), v.Path, v.Width, v.Height, formatBytes(v.Size))
		}
	}
	t.printf("\n  Manifest:    %s\n\n", manifest.FileName)
}
