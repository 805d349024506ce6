package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Source is one discovered shot file.
type Source struct {
	AbsPath string
	// RelPath is relative to the scanned directory, with forward slashes.
	RelPath string
	// Format is the normalized extension (jpeg, png, webp, gif, bmp, tiff).
	Format string
	Size   int64
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Scan walks dir in lexical order and returns the image files whose
// relative path matches pattern. An empty pattern matches everything;
// "*" does not cross directory separators, "**" does.
func Scan(dir, pattern string) ([]Source, error) {
	if pattern == "" {
		pattern = "**"
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	var sources []Source
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExtensions[ext] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !g.Match(rel) {
			return nil
		}

		format := strings.TrimPrefix(ext, ".")
		switch format {
		case "jpg":
			format = "jpeg"
		case "tif":
			format = "tiff"
		}
		sources = append(sources, Source{
			AbsPath: path,
			RelPath: rel,
			Format:  format,
			Size:    info.Size(),
		})
		return nil
	})
	return sources, err
}
