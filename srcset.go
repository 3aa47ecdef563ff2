package ixurl

import (
	"strconv"
	"strings"

	"github.com/AnyUserName/ixurl/internal/validate"
)

// SrcSetSeparator joins srcset entries.
const SrcSetSeparator = ",\n"

// MaxDPR is the highest device pixel ratio offered in DPR mode.
const MaxDPR = 5

// dprQualities maps a device pixel ratio to its output quality. Denser
// screens hide compression artifacts, so quality drops as the ratio grows.
var dprQualities = [MaxDPR + 1]int{1: 75, 2: 50, 3: 35, 4: 23, 5: 20}

// DPRQuality returns the variable quality for a ratio in 1..MaxDPR.
func DPRQuality(ratio int) (int, bool) {
	if ratio < 1 || ratio > MaxDPR {
		return 0, false
	}
	return dprQualities[ratio], true
}

// DPRTrigger decides whether params describe a fixed-size image, which
// gets 1x..5x density variants instead of a width ladder.
type DPRTrigger func(Params) bool

// HasWidthOrHeight triggers DPR mode when w or h is set. It is the default.
func HasWidthOrHeight(p Params) bool {
	return p.Has(WidthParam) || p.Has(HeightParam)
}

// HasWidth triggers DPR mode only when w is set.
func HasWidth(p Params) bool {
	return p.Has(WidthParam)
}

// HasWidthOrHeightWithAspectRatio triggers DPR mode when w is set, or
// when h is set together with ar.
func HasWidthOrHeightWithAspectRatio(p Params) bool {
	return p.Has(WidthParam) || (p.Has(HeightParam) && p.Has(AspectParam))
}

// SrcSetOptions tunes BuildSrcSet. The zero value uses the default ladder,
// variable quality and the HasWidthOrHeight trigger.
type SrcSetOptions struct {
	// Ladder overrides DefaultLadder in width mode.
	Ladder *Ladder
	// Widths, when non-nil, replaces the ladder with an explicit list.
	Widths []int
	// DisableVariableQuality stops DPR mode from setting q.
	DisableVariableQuality bool
	// DPRTrigger overrides HasWidthOrHeight.
	DPRTrigger DPRTrigger
}

func (o SrcSetOptions) trigger() DPRTrigger {
	if o.DPRTrigger != nil {
		return o.DPRTrigger
	}
	return HasWidthOrHeight
}

func (o SrcSetOptions) targetWidths() ([]int, error) {
	if o.Widths != nil {
		if err := validate.Widths(o.Widths); err != nil {
			return nil, err
		}
		return o.Widths, nil
	}
	if o.Ladder != nil {
		return o.Ladder.Widths()
	}
	return DefaultLadder.Widths()
}

// SrcSetEntry is one srcset candidate. Exactly one of Width and DPR is set.
type SrcSetEntry struct {
	URL   string
	Width int
	DPR   int
}

// Descriptor returns "<width>w" or "<dpr>x".
func (e SrcSetEntry) Descriptor() string {
	if e.DPR > 0 {
		return strconv.Itoa(e.DPR) + "x"
	}
	return strconv.Itoa(e.Width) + "w"
}

func (e SrcSetEntry) String() string {
	return e.URL + " " + e.Descriptor()
}

// BuildSrcSetEntries returns the srcset candidates for path.
func (b *Builder) BuildSrcSetEntries(path string, params Params, opts SrcSetOptions) ([]SrcSetEntry, error) {
	if opts.trigger()(params) {
		return b.dprEntries(path, params, opts.DisableVariableQuality), nil
	}

	widths, err := opts.targetWidths()
	if err != nil {
		return nil, err
	}
	entries := make([]SrcSetEntry, 0, len(widths))
	for _, w := range widths {
		p := params.Clone()
		p.Set(WidthParam, strconv.Itoa(w))
		entries = append(entries, SrcSetEntry{URL: b.BuildURL(path, p), Width: w})
	}
	return entries, nil
}

func (b *Builder) dprEntries(path string, params Params, disableVariableQuality bool) []SrcSetEntry {
	setQuality := !disableVariableQuality && !params.Has(QualityParam)

	entries := make([]SrcSetEntry, 0, MaxDPR)
	for ratio := 1; ratio <= MaxDPR; ratio++ {
		p := params.Clone()
		if setQuality {
			p.Set(QualityParam, strconv.Itoa(dprQualities[ratio]))
		}
		p.Set(DPRParam, strconv.Itoa(ratio))
		entries = append(entries, SrcSetEntry{URL: b.BuildURL(path, p), DPR: ratio})
	}
	return entries
}

// BuildSrcSet returns a srcset attribute value for path: width-described
// candidates for fluid images, density-described ones when the trigger
// matches.
func (b *Builder) BuildSrcSet(path string, params Params, opts SrcSetOptions) (string, error) {
	entries, err := b.BuildSrcSetEntries(path, params, opts)
	if err != nil {
		return "", err
	}
	return JoinSrcSet(entries), nil
}

// JoinSrcSet renders entries as a srcset attribute value.
func JoinSrcSet(entries []SrcSetEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, SrcSetSeparator)
}
