package manifest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// VerifyFunc checks a single generated URL, typically its signature.
type VerifyFunc func(url string) error

// Check validates the manifest structure and, when verify is non-nil,
// every URL it references. Problems are returned in asset key order.
func Check(m *Manifest, verify VerifyFunc) []string {
	var errs []string

	// Check version.
	if m.Version != SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if len(m.Domains) == 0 {
		errs = append(errs, "no domains recorded")
	}

	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		errs = append(errs, checkAsset(key, m.Assets[key], verify)...)
	}

	// Verify stats consistency.
	var srcsets, urls int
	for _, a := range m.Assets {
		srcsets += len(a.SrcSets)
		urls += len(a.URLs())
	}
	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalSrcSets != srcsets {
		errs = append(errs, fmt.Sprintf("stats.total_srcsets mismatch: %d != %d", m.Stats.TotalSrcSets, srcsets))
	}
	if m.Stats.TotalURLs != urls {
		errs = append(errs, fmt.Sprintf("stats.total_urls mismatch: %d != %d", m.Stats.TotalURLs, urls))
	}
	return errs
}

func checkAsset(key string, a Asset, verify VerifyFunc) []string {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("asset %q: ", key)+fmt.Sprintf(format, args...))
	}

	if a.Original.Width <= 0 || a.Original.Height <= 0 {
		add("invalid original dimensions %dx%d", a.Original.Width, a.Original.Height)
	}
	if a.AspectRatio <= 0 {
		add("invalid aspect ratio %.4f", a.AspectRatio)
	}
	if a.Hash == "" {
		add("missing hash")
	}
	if a.URL == "" {
		add("missing url")
	}
	if len(a.SrcSets) == 0 {
		add("no srcsets")
	}

	seenFormats := map[string]bool{}
	for i, s := range a.SrcSets {
		if s.Format == "" {
			add("srcset[%d]: empty format", i)
		} else if seenFormats[s.Format] {
			add("srcset[%d]: duplicate format %q", i, s.Format)
		}
		seenFormats[s.Format] = true

		if len(s.Candidates) == 0 {
			add("srcset[%d]: no candidates", i)
			continue
		}
		parts := make([]string, len(s.Candidates))
		for j, c := range s.Candidates {
			if c.Width <= 0 {
				add("srcset[%d] candidate[%d]: invalid width %d", i, j, c.Width)
			}
			if j > 0 && c.Width <= s.Candidates[j-1].Width {
				add("srcset[%d] candidate[%d]: width %d not increasing", i, j, c.Width)
			}
			parts[j] = c.URL + " " + strconv.Itoa(c.Width) + "w"
		}
		if s.Value != strings.Join(parts, ",\n") {
			add("srcset[%d]: value does not match candidates", i)
		}
	}

	if verify != nil {
		for _, u := range a.URLs() {
			if u == "" {
				continue
			}
			if err := verify(u); err != nil {
				add("%s: %v", u, err)
			}
		}
	}
	return errs
}
