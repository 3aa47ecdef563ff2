package pipeline

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"strconv"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/hasher"
	"github.com/AnyUserName/ixurl/internal/manifest"
)

// placeholderBlur is the blur strength of placeholder URLs.
const placeholderBlur = "200"

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// widthMode keeps srcsets width-described even if profile params carry
// a size.
func widthMode(ixurl.Params) bool { return false }

// processImage handles a single source image: hash, decode, probe, build URLs.
func (p *Pipeline) processImage(src Source) processResult {
	result := processResult{key: src.Key}

	f, err := os.Open(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("open %s: %w", src.RelPath, err)
		return result
	}
	defer f.Close()

	hash, err := hasher.ContentHashReader(f, 16)
	if err != nil {
		result.err = fmt.Errorf("hash %s: %w", src.RelPath, err)
		return result
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		result.err = fmt.Errorf("rewind %s: %w", src.RelPath, err)
		return result
	}

	// Oriented dimensions are what browsers lay out.
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}

	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()
	if origW == 0 || origH == 0 {
		result.err = fmt.Errorf("decode %s: empty image", src.RelPath)
		return result
	}
	alpha := hasAlpha(img)
	avg := computeAvgColor(img)

	urlPath := path.Join(p.cfg.PathPrefix, src.RelPath)
	prof := p.cfg.Profile

	result.asset = manifest.Asset{
		Path: src.RelPath,
		Original: manifest.OriginalInfo{
			Width:    origW,
			Height:   origH,
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: alpha,
		},
		Hash:        hash,
		AspectRatio: float64(origW) / float64(origH),
		AvgColor:    &avg,
		URL:         p.builder.BuildURL(urlPath, prof.URLParams("")),
	}

	if p.cfg.PlaceholderWidth > 0 {
		params := prof.URLParams("")
		params.Set(ixurl.WidthParam, strconv.Itoa(p.cfg.PlaceholderWidth))
		params.Set("blur", placeholderBlur)
		result.asset.Placeholder = p.builder.BuildURL(urlPath, params)
	}

	// Determine target widths.
	widths, err := prof.EffectiveWidths(origW)
	if err != nil {
		result.err = fmt.Errorf("profile %s: %w", prof.Name, err)
		return result
	}

	// Determine output formats.
	formats := p.registry.ResolveFormats(prof.Formats, alpha)
	if len(formats) == 0 {
		result.err = fmt.Errorf("%s: no enabled output format fits (alpha=%t)", src.RelPath, alpha)
		return result
	}

	for _, fm := range formats {
		entries, err := p.builder.BuildSrcSetEntries(urlPath, prof.URLParams(fm.Param), ixurl.SrcSetOptions{
			Widths:     widths,
			DPRTrigger: widthMode,
		})
		if err != nil {
			result.err = fmt.Errorf("srcset %s as %s: %w", src.RelPath, fm.Name, err)
			return result
		}

		set := manifest.SrcSet{Format: fm.Name, Value: ixurl.JoinSrcSet(entries)}
		for _, e := range entries {
			set.Candidates = append(set.Candidates, manifest.Candidate{URL: e.URL, Width: e.Width})
		}
		result.asset.SrcSets = append(result.asset.SrcSets, set)
	}

	return result
}

// hasAlpha reports whether any pixel may be translucent.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// computeAvgColor calculates the average RGB color of an image with a
// box filter down to a single pixel.
func computeAvgColor(img image.Image) [3]uint8 {
	px := imaging.Resize(img, 1, 1, imaging.Box)
	if len(px.Pix) < 3 {
		return [3]uint8{0, 0, 0}
	}
	return [3]uint8{px.Pix[0], px.Pix[1], px.Pix[2]}
}
