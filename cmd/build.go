package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ixurl/internal/manifest"
	"github.com/AnyUserName/ixurl/internal/output"
	"github.com/AnyUserName/ixurl/internal/pipeline"
	"github.com/AnyUserName/ixurl/internal/profile"
)

type buildFlags struct {
	outDir      string
	profile     string
	workers     int
	widths      []int
	quality     int
	pathPrefix  string
	formats     []string
	placeholder int
}

func newBuildCmd(a *app) *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build <input_dir>",
		Short: "Scan images and write a manifest of URLs and srcsets",
		Long: `Scans input directory for images (png, jpg, jpeg, webp, gif, bmp, tiff),
probes their dimensions, alpha and average color, and writes a manifest
with a URL, a blurred placeholder URL and one srcset per output format
for every image.

Srcset widths come from the profile and never exceed the original width.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, args[0], f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.outDir, "out", "o", ".", "directory for "+manifest.FileName)
	fl.StringVarP(&f.profile, "profile", "p", "", "srcset profile (default from config)")
	fl.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = config or NumCPU)")
	fl.IntSliceVar(&f.widths, "widths", nil, "custom widths (overrides profile)")
	fl.IntVarP(&f.quality, "quality", "q", 0, "fixed quality 1-100 (0 = profile default)")
	fl.StringVar(&f.pathPrefix, "path-prefix", "", "prefix for every URL path")
	fl.StringSliceVar(&f.formats, "formats", nil, "enabled output formats (default all)")
	fl.IntVar(&f.placeholder, "placeholder-width", 0, "placeholder width, -1 disables (0 = default)")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, inputDir string, f buildFlags) error {
	start := time.Now()
	bc := a.cfg.Build

	// Resolve absolute paths.
	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(f.outDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	// Load profile.
	name := bc.Profile
	if f.profile != "" {
		name = f.profile
	}
	prof := profile.Get(name)
	if f.widths != nil {
		prof.Widths = f.widths
	}
	if f.quality > 0 {
		prof.Quality = f.quality
	}

	cfg := pipeline.Config{
		InputDir:         absInput,
		Profile:          prof,
		Workers:          firstNonZero(f.workers, bc.Workers),
		PathPrefix:       firstNonEmpty(f.pathPrefix, bc.PathPrefix),
		Formats:          bc.Formats,
		PlaceholderWidth: firstNonZero(f.placeholder, bc.PlaceholderWidth),
	}
	if f.formats != nil {
		cfg.Formats = f.formats
	}

	a.log.Debug().
		Str("input", absInput).
		Str("output", absOutput).
		Str("profile", prof.Name).
		Ints("widths", prof.Widths).
		Int("quality", prof.Quality).
		Msg("build")

	b, err := a.builder()
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, b, a.log)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	// Write manifest.
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return a.printBuildReport(m, manifestPath, time.Since(start))
}

func (a *app) printBuildReport(m *manifest.Manifest, manifestPath string, elapsed time.Duration) error {
	pr := a.printer
	pr.Header("ixurl build complete")

	s := m.Stats
	pr.Field("Assets", s.TotalAssets)
	pr.Field("Srcsets", s.TotalSrcSets)
	pr.Field("URLs", s.TotalURLs)
	pr.Field("Input size", output.FormatBytes(s.TotalInputBytes))
	pr.Field("Signed", m.Signed)
	if m.BuildInfo != nil {
		pr.Field("Workers", m.BuildInfo.Workers)
		pr.Field("Shard", m.BuildInfo.Shard)
	}
	pr.Field("Time", elapsed.Round(time.Millisecond))
	pr.Field("Manifest", manifestPath)
	if s.Failed > 0 {
		pr.Warning("%d images could not be processed", s.Failed)
	}

	// Top 10 heaviest assets.
	if len(m.Assets) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := m.Assets[keys[i]].Original.Size, m.Assets[keys[j]].Original.Size
		if si != sj {
			return si > sj
		}
		return keys[i] < keys[j]
	})
	keys = keys[:min(len(keys), 10)]

	pr.Header(fmt.Sprintf("Top %d heaviest", len(keys)))
	t := output.NewTable(pr.Out(), "asset", "size", "dimensions", "srcsets")
	for _, k := range keys {
		asset := m.Assets[k]
		t.AddRow(
			output.TruncKey(k, 40),
			output.FormatBytes(asset.Original.Size),
			fmt.Sprintf("%dx%d", asset.Original.Width, asset.Original.Height),
			strconv.Itoa(len(asset.SrcSets)),
		)
	}
	return t.Render()
}

func firstNonZero(v ...int) int {
	for _, x := range v {
		if x != 0 {
			return x
		}
	}
	return 0
}

func firstNonEmpty(v ...string) string {
	for _, x := range v {
		if x != "" {
			return x
		}
	}
	return ""
}
