package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ixurl/internal/manifest"
	"github.com/AnyUserName/ixurl/internal/output"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <out_dir_or_manifest>",
		Short: "Display statistics for a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runStats(args[0])
		},
	}
}

func (a *app) runStats(path string) error {
	// If path is a directory, look for manifest inside.
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
	return a.printStats(m)
}

func (a *app) printStats(m *manifest.Manifest) error {
	pr := a.printer
	pr.Header("Manifest")
	pr.Field("Version", m.Version)
	pr.Field("Generated", m.GeneratedAt)
	pr.Field("Profile", m.Profile)
	pr.Field("Domains", len(m.Domains))
	pr.Field("Signed", m.Signed)
	if m.BuildInfo != nil {
		pr.Field("Workers", m.BuildInfo.Workers)
		pr.Field("Shard", m.BuildInfo.Shard)
	}

	s := m.Stats
	pr.Field("Assets", s.TotalAssets)
	pr.Field("Srcsets", s.TotalSrcSets)
	pr.Field("URLs", s.TotalURLs)
	pr.Field("Input size", output.FormatBytes(s.TotalInputBytes))

	// Per-domain breakdown shows how evenly sharding spread the assets.
	domainCount := map[string]int{}
	formatCount := map[string]int{}
	widthCount := map[int]int{}
	for _, asset := range m.Assets {
		domainCount[hostOf(asset.URL)]++
		for _, set := range asset.SrcSets {
			formatCount[set.Format]++
			for _, c := range set.Candidates {
				widthCount[c.Width]++
			}
		}
	}

	pr.Header("Domains")
	dt := output.NewTable(pr.Out(), "domain", "assets")
	for _, d := range m.Domains {
		dt.AddRow(d, strconv.Itoa(domainCount[d]))
	}
	if err := dt.Render(); err != nil {
		return err
	}

	pr.Header("Formats")
	ft := output.NewTable(pr.Out(), "format", "srcsets")
	formats := make([]string, 0, len(formatCount))
	for f := range formatCount {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		ft.AddRow(f, strconv.Itoa(formatCount[f]))
	}
	if err := ft.Render(); err != nil {
		return err
	}

	pr.Header("Widths")
	wt := output.NewTable(pr.Out(), "width", "candidates")
	widths := make([]int, 0, len(widthCount))
	for w := range widthCount {
		widths = append(widths, w)
	}
	sort.Ints(widths)
	for _, w := range widths {
		wt.AddRow(strconv.Itoa(w)+"px", strconv.Itoa(widthCount[w]))
	}
	if err := wt.Render(); err != nil {
		return err
	}

	// Warnings.
	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		asset := m.Assets[k]
		if len(asset.SrcSets) == 0 {
			pr.Warning("asset %q has no srcsets", k)
		}
		if asset.Placeholder == "" {
			pr.Warning("asset %q has no placeholder", k)
		}
	}
	if s.Failed > 0 {
		pr.Warning("%d images failed during the build", s.Failed)
	}
	return nil
}

// hostOf extracts the host of a generated URL.
func hostOf(u string) string {
	_, rest, ok := strings.Cut(u, "://")
	if !ok {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	return host
}
