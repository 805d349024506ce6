package manifest

// FileName is the manifest written next to the exported files.
const FileName = "momento.manifest.json"

// Manifest is the record of one exported session.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	BasePath    string           `json:"base_path"`
	Session     *SessionInfo     `json:"session,omitempty"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"` // "composite", "animation"
	Stats       Stats            `json:"stats"`
}

// SessionInfo describes the capture the outputs were made from.
type SessionInfo struct {
	Token    uint64   `json:"token"`
	Template string   `json:"template"`
	Frames   int      `json:"frames"`
	Width    int      `json:"width"`  // shot width
	Height   int      `json:"height"` // shot height
	Filters  []string `json:"filters"`
	Effects  []string `json:"effects"`
	Locale   string   `json:"locale,omitempty"`
}

// BuildInfo captures run-time parameters for diagnostics.
type BuildInfo struct {
	Workers     int   `json:"workers"`
	CompositeMS int64 `json:"composite_ms"`
	LayoutMS    int64 `json:"layout_ms"`
	AnimateMS   int64 `json:"animate_ms"`
}

// Asset is one product of the session and all its encoded variants.
type Asset struct {
	Kind        string    `json:"kind"` // "composite" or "animation"
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	AspectRatio float64   `json:"aspect_ratio"`
	Frames      int       `json:"frames,omitempty"`   // animation only
	DelayMS     int64     `json:"delay_ms,omitempty"` // animation only
	AvgColor    *[3]uint8 `json:"avg_color,omitempty"`
	Variants    []Variant `json:"variants"`
}

// Variant is one encoded output file.
type Variant struct {
	Format    string `json:"format"` // "avif", "webp", "jpeg", "png", "gif"
	MediaType string `json:"media_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int64  `json:"size"` // bytes on disk
	Hash      string `json:"hash"` // first 16 hex chars of xxhash64
	Path      string `json:"path"` // relative to base_path
}

// Stats aggregates export metrics.
type Stats struct {
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	TotalVariants    int   `json:"total_variants"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
