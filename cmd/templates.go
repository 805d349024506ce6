package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/momento/internal/compose"
	"github.com/AnyUserName/momento/internal/effect"
	"github.com/AnyUserName/momento/internal/filter"
	"github.com/AnyUserName/momento/internal/layout"
	"github.com/AnyUserName/momento/internal/profile"
)

var catalogSlots int

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"templates"},
	Short:   "List templates, filters, effects, stickers and export profiles",
	Args:    cobra.NoArgs,
	RunE:    runCatalog,
}

func init() {
	catalogCmd.Flags().IntVarP(&catalogSlots, "slots", "n", layout.DefaultSlots, "shots per session")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(_ *cobra.Command, _ []string) error {
	cat, err := layout.NewCatalog(catalogSlots)
	if err != nil {
		return err
	}
	t := stdout()

	t.printf("\n  %s %s\n", t.bold("Templates"), t.dim(fmt.Sprintf("(%d shots)", cat.Slots())))
	for _, tpl := range cat.All() {
		t.printf("    %s %-10s %-18s %5dx%-5d\n", tpl.Icon, tpl.ID, tpl.Name, tpl.Width, tpl.Height)
	}

	t.printf("\n  %s\n", t.bold("Filters"))
	for _, f := range filter.All() {
		t.printf("    %-12s %-12s %s\n", f.ID, f.Name, t.dim(f.String()))
	}

	t.printf("\n  %s\n", t.bold("Effects"))
	for _, e := range effect.All() {
		t.printf("    %-12s %-14s %s\n", e.ID, e.Name, t.dim(e.Kind.String()))
	}

	t.printf("\n  %s\n    %s\n", t.bold("Stickers"), strings.Join(compose.StickerGlyphs, " "))
	t.printf("    %s %s\n", strings.Join(compose.EmojiGlyphs, " "), t.dim("(emoji need --font with emoji coverage)"))

	t.printf("\n  %s\n", t.bold("Profiles"))
	for _, name := range profile.Names() {
		p := profile.Get(name)
		anim := "no gif"
		if p.Animate {
			anim = fmt.Sprintf("gif %s", p.Delay)
		}
		def := ""
		if name == profile.DefaultName {
			def = t.ok(" (default)")
		}
		t.printf("    %-10s widths=%v formats=%s q%d, %s%s\n",
			name, p.Widths, strings.Join(p.Formats, "/"), p.Quality, anim, def)
	}
	t.printf("\n")
	return nil
}
