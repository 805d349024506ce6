package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "momento",
	Short: "Photo booth compositor: filters, stickers, print templates and GIFs",
	Long: `momento turns a capture session of same-sized shots into a decorated
print composite (strip, grid, film or collage) and an animated GIF.

Every shot is filtered, given its effect and stickers, then laid out on the
chosen template. Outputs get content-hashed names and a manifest.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"momento %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[momento] "+format+"\n", args...)
	}
}

// term is a report writer that knows whether it may emit ANSI colors.
type term struct {
	w     io.Writer
	color bool
}

func stdout() *term {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return &term{w: colorable.NewColorableStdout(), color: tty && !noColor}
}

func (t *term) paint(code, s string) string {
	if !t.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (t *term) ok(s string) string   { return t.paint("32", s) }
func (t *term) bad(s string) string  { return t.paint("31", s) }
func (t *term) bold(s string) string { return t.paint("1", s) }
func (t *term) dim(s string) string  { return t.paint("2", s) }

func (t *term) printf(format string, args ...any) {
	fmt.Fprintf(t.w, format, args...)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
