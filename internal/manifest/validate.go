package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/momento/internal/hasher"
)

var knownKinds = map[string]bool{"composite": true, "animation": true}

// Validate checks the manifest's structure and that every referenced file
// exists with the recorded size and content hash. It returns one message
// per problem, in a stable order.
func Validate(m *Manifest, baseDir string) []string {
	var errs []string

	if m.Version != SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if len(m.Assets) == 0 {
		errs = append(errs, "manifest lists no assets")
	}

	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seenPaths := map[string]bool{}
	for _, key := range keys {
		asset := m.Assets[key]
		if !knownKinds[asset.Kind] {
			errs = append(errs, fmt.Sprintf("asset %q: unknown kind %q", key, asset.Kind))
		}
		if asset.Width <= 0 || asset.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid dimensions %dx%d", key, asset.Width, asset.Height))
		}
		if asset.AspectRatio <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid aspect ratio %.4f", key, asset.AspectRatio))
		}
		if asset.Kind == "animation" && asset.Frames <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: animation without frames", key))
		}
		if len(asset.Variants) == 0 {
			errs = append(errs, fmt.Sprintf("asset %q: no variants", key))
		}

		for i, v := range asset.Variants {
			if v.Format == "" {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: empty format", key, i))
			}
			if v.Width <= 0 || v.Height <= 0 {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: invalid dimensions %dx%d",
					key, i, v.Width, v.Height))
			}
			if v.Hash == "" {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: missing hash", key, i))
			}
			if v.Path == "" {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: missing path", key, i))
				continue
			}
			if seenPaths[v.Path] {
				errs = append(errs, fmt.Sprintf("asset %q variant[%d]: duplicate path %q", key, i, v.Path))
			}
			seenPaths[v.Path] = true

			errs = append(errs, checkFile(filepath.Join(baseDir, filepath.FromSlash(v.Path)), key, i, v)...)
		}
	}

	variantCount := 0
	for _, a := range m.Assets {
		variantCount += len(a.Variants)
	}
	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalVariants != variantCount {
		errs = append(errs, fmt.Sprintf("stats.total_variants mismatch: %d != %d", m.Stats.TotalVariants, variantCount))
	}
	return errs
}

func checkFile(path, key string, i int, v Variant) []string {
	f, err := os.Open(path)
	if err != nil {
		return []string{fmt.Sprintf("asset %q variant[%d]: file not found: %s", key, i, v.Path)}
	}
	defer f.Close()

	var errs []string
	if info, err := f.Stat(); err == nil && v.Size > 0 && info.Size() != v.Size {
		errs = append(errs, fmt.Sprintf("asset %q variant[%d]: size mismatch: manifest=%d, disk=%d",
			key, i, v.Size, info.Size()))
	}
	if v.Hash != "" {
		sum, err := hasher.ContentHashReader(f, len(v.Hash))
		if err != nil {
			errs = append(errs, fmt.Sprintf("asset %q variant[%d]: read: %v", key, i, err))
		} else if sum != v.Hash {
			errs = append(errs, fmt.Sprintf("asset %q variant[%d]: hash mismatch: manifest=%s, disk=%s",
				key, i, v.Hash, sum))
		}
	}
	return errs
}
