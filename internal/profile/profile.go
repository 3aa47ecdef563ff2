// Package profile holds named srcset presets for the build pipeline.
package profile

import (
	"slices"
	"sort"
	"strconv"

	"github.com/AnyUserName/ixurl"
)

// DefaultName is the profile used when none or an unknown one is asked for.
const DefaultName = "responsive"

// Profile defines how srcsets are generated for a class of images.
type Profile struct {
	Name string
	// Ladder generates widths when Widths is empty.
	Ladder ixurl.Ladder
	// Widths, when set, replaces the ladder.
	Widths  []int
	Formats []string // output formats in priority order
	Quality int      // fixed q for every URL, 0 leaves it to the service
	Retina  bool     // add 2x widths
	// Params are added to every URL of the profile.
	Params map[string]string
}

// Built-in profiles.
var profiles = map[string]Profile{
	"responsive": {
		Name:    "responsive",
		Ladder:  ixurl.DefaultLadder,
		Formats: []string{"webp", "jpeg"},
		Params:  map[string]string{"auto": "compress"},
	},
	"compact": {
		Name:    "compact",
		Widths:  []int{320, 640, 960, 1280},
		Formats: []string{"avif", "webp", "jpeg"},
		Quality: 82,
		Retina:  true,
	},
	"wide": {
		Name:    "wide",
		Ladder:  ixurl.Ladder{Begin: 640, End: ixurl.MaxWidth, Tolerance: 0.1},
		Formats: []string{"avif", "webp", "jpeg"},
		Quality: 85,
	},
	"minimal": {
		Name:    "minimal",
		Widths:  []int{320, 640},
		Formats: []string{"jpeg"},
		Quality: 78,
	},
}

// Get returns a profile by name. Falls back to DefaultName if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Names lists the built-in profiles alphabetically.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TargetWidths returns the profile's widths before any capping.
func (p Profile) TargetWidths() ([]int, error) {
	if len(p.Widths) > 0 {
		return slices.Clone(p.Widths), nil
	}
	return p.Ladder.Widths()
}

// EffectiveWidths returns the target widths, retina doubles included,
// without upscaling past originalWidth. A non-positive originalWidth
// disables the cap. The result is sorted and free of duplicates.
func (p Profile) EffectiveWidths(originalWidth int) ([]int, error) {
	targets, err := p.TargetWidths()
	if err != nil {
		return nil, err
	}

	fits := func(w int) bool { return originalWidth <= 0 || w <= originalWidth }
	seen := map[int]bool{}
	var result []int
	for _, w := range targets {
		if !fits(w) {
			continue // don't upscale
		}
		if !seen[w] {
			seen[w] = true
			result = append(result, w)
		}
		if p.Retina {
			w2 := w * 2
			if fits(w2) && !seen[w2] {
				seen[w2] = true
				result = append(result, w2)
			}
		}
	}

	// Originals narrower than every target still get one candidate.
	if len(result) == 0 && originalWidth > 0 {
		result = append(result, originalWidth)
	}
	slices.Sort(result)
	return result, nil
}

// URLParams returns the params shared by every URL of the profile for
// one output format parameter. An empty fm leaves the format alone.
func (p Profile) URLParams(fm string) ixurl.Params {
	params := ixurl.ParamsFromMap(p.Params)
	if fm != "" {
		params.Set("fm", fm)
	}
	if p.Quality > 0 {
		params.Set(ixurl.QualityParam, strconv.Itoa(p.Quality))
	}
	return params
}
