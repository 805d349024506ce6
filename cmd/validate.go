package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/momento/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_manifest>",
	Short: "Validate a momento manifest and verify every referenced file",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, manifest.FileName)
	}

	m, err := manifest.ReadJSON(path)
	if err != nil {
		return err
	}
	logVerbose("manifest v%d, profile %s, generated %s", m.Version, m.Profile, m.GeneratedAt)

	t := stdout()
	errs := manifest.Validate(m, filepath.Dir(path))
	if len(errs) == 0 {
		t.printf("  %s Manifest is valid\n", t.ok("✓"))
		t.printf("  %s %d assets, %d variants, all files match their hashes\n",
			t.ok("✓"), m.Stats.TotalAssets, m.Stats.TotalVariants)
		if s := m.Session; s != nil {
			t.printf("  %s\n", t.dim(fmt.Sprintf("session #%d: %s, %d frames %dx%d", s.Token, s.Template, s.Frames, s.Width, s.Height)))
		}
		return nil
	}

	t.printf("  %s Manifest has %d error(s):\n", t.bad("✗"), len(errs))
	for _, e := range errs {
		t.printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
