package manifest

// FileName is the manifest written into the output directory.
const FileName = "ixurl.manifest.json"

// Manifest is the top-level output of an ixurl build.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	Domains     []string         `json:"domains"`
	Signed      bool             `json:"signed"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures build-time parameters for diagnostics.
type BuildInfo struct {
	Workers int    `json:"workers"`
	Shard   string `json:"shard"`
}

// Asset describes a single source image and the URLs generated for it.
type Asset struct {
	Path        string       `json:"path"` // source path relative to the input dir
	Original    OriginalInfo `json:"original"`
	Hash        string       `json:"hash"` // first 16 hex chars of xxhash64 of the source
	AspectRatio float64      `json:"aspect_ratio"`        // width / height
	AvgColor    *[3]uint8    `json:"avg_color,omitempty"` // [R,G,B] 0-255, optional
	URL         string       `json:"url"`
	Placeholder string       `json:"placeholder,omitempty"`
	SrcSets     []SrcSet     `json:"srcsets"`
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// SrcSet is the srcset of an asset in one output format.
type SrcSet struct {
	Format     string      `json:"format"` // "avif", "webp", "jpeg", "png"
	Candidates []Candidate `json:"candidates"`
	Value      string      `json:"value"` // ready-to-use srcset attribute
}

// Candidate is one srcset entry.
type Candidate struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

// URLs returns every URL of the asset: the main URL, the placeholder and
// all srcset candidates.
func (a Asset) URLs() []string {
	urls := []string{a.URL}
	if a.Placeholder != "" {
		urls = append(urls, a.Placeholder)
	}
	for _, s := range a.SrcSets {
		for _, c := range s.Candidates {
			urls = append(urls, c.URL)
		}
	}
	return urls
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes int64 `json:"total_input_bytes"`
	TotalAssets     int   `json:"total_assets"`
	TotalSrcSets    int   `json:"total_srcsets"`
	TotalURLs       int   `json:"total_urls"`
	Failed          int   `json:"failed,omitempty"` // sources that could not be probed
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
