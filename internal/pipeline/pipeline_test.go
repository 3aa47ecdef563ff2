package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/manifest"
	"github.com/AnyUserName/ixurl/internal/profile"
)

// writeFixtures lays out a small image tree: one JPEG banner, three PNG
// cards, a translucent logo, an undecodable file and some noise to skip.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cards"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cache"), 0o755))

	require.NoError(t, imaging.Save(gradient(400, 225), filepath.Join(dir, "banner.jpg")))
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("card-%d.png", i)
		require.NoError(t, imaging.Save(solidWithBorder(200, 150, uint8(i*60)), filepath.Join(dir, "cards", name)))
	}
	require.NoError(t, imaging.Save(alphaGradient(100, 100), filepath.Join(dir, "logo.png")))
	require.NoError(t, imaging.Save(gradient(10, 10), filepath.Join(dir, ".cache", "old.png")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644))
	return dir
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255}
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 220, G: 60, B: 30, A: uint8(x * 255 / w)})
		}
	}
	return img
}

func testBuilder(t *testing.T) *ixurl.Builder {
	t.Helper()
	b, err := ixurl.New([]string{"demo.imgix.net"}, ixurl.WithSignKey("FOO123bar"), ixurl.WithLibraryParam(false))
	require.NoError(t, err)
	return b
}

var testProfile = profile.Profile{
	Name:    "test",
	Widths:  []int{100, 200, 320},
	Formats: []string{"webp", "jpeg"},
}

func TestScanImages(t *testing.T) {
	dir := writeFixtures(t)

	sources, err := ScanImages(dir)
	require.NoError(t, err)

	var keys []string
	for _, s := range sources {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{"banner", "broken", "cards/card-1", "cards/card-2", "cards/card-3", "logo"}, keys)

	assert.Equal(t, "banner.jpg", sources[0].RelPath)
	assert.Equal(t, "jpeg", sources[0].Format)
	assert.Positive(t, sources[0].Size)
	assert.Equal(t, "cards/card-1.png", sources[2].RelPath)
}

func TestRun(t *testing.T) {
	dir := writeFixtures(t)
	b := testBuilder(t)

	p, err := New(Config{InputDir: dir, Profile: testProfile, Workers: 2}, b, zerolog.Nop())
	require.NoError(t, err)

	m, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test", m.Profile)
	assert.True(t, m.Signed)
	assert.Equal(t, []string{"demo.imgix.net"}, m.Domains)
	require.NotNil(t, m.BuildInfo)
	assert.Equal(t, 2, m.BuildInfo.Workers)
	assert.Equal(t, "none", m.BuildInfo.Shard)

	assert.Equal(t, 5, m.Stats.TotalAssets)
	assert.Equal(t, 1, m.Stats.Failed)
	assert.NotContains(t, m.Assets, "broken")

	banner := m.Assets["banner"]
	assert.Equal(t, manifest.OriginalInfo{Width: 400, Height: 225, Format: "jpeg", Size: banner.Original.Size}, banner.Original)
	assert.InDelta(t, 400.0/225.0, banner.AspectRatio, 1e-9)
	assert.Len(t, banner.Hash, 16)
	require.NotNil(t, banner.AvgColor)
	assert.Equal(t, b.BuildURL("banner.jpg", ixurl.Params{}), banner.URL)
	assert.Equal(t, b.BuildURL("banner.jpg", ixurl.NewParams("w", "32", "blur", "200")), banner.Placeholder)
	require.Len(t, banner.SrcSets, 2)
	assert.Equal(t, "webp", banner.SrcSets[0].Format)
	assert.Equal(t, "jpeg", banner.SrcSets[1].Format)
	for _, s := range banner.SrcSets {
		require.Len(t, s.Candidates, 3)
		assert.Equal(t, 320, s.Candidates[2].Width)
	}
	assert.Equal(t,
		b.BuildURL("banner.jpg", ixurl.NewParams("fm", "jpg", "w", "100")),
		banner.SrcSets[1].Candidates[0].URL)

	card := m.Assets["cards/card-2"]
	assert.False(t, card.Original.HasAlpha)
	assert.Equal(t, "cards/card-2.png", card.Path)
	require.Len(t, card.SrcSets, 2)
	assert.Len(t, card.SrcSets[0].Candidates, 2)

	logo := m.Assets["logo"]
	assert.True(t, logo.Original.HasAlpha)
	require.Len(t, logo.SrcSets, 2)
	assert.Equal(t, "webp", logo.SrcSets[0].Format)
	assert.Equal(t, "png", logo.SrcSets[1].Format)
	assert.Equal(t, []manifest.Candidate{{URL: b.BuildURL("logo.png", ixurl.NewParams("fm", "png", "w", "100")), Width: 100}},
		logo.SrcSets[1].Candidates)

	assert.Empty(t, manifest.Check(m, b.Verify))
}

func TestRun_PathPrefixAndNoPlaceholder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(gradient(50, 50), filepath.Join(dir, "a.png")))
	b := testBuilder(t)

	p, err := New(Config{InputDir: dir, Profile: testProfile, PathPrefix: "/static", PlaceholderWidth: -1}, b, zerolog.Nop())
	require.NoError(t, err)

	m, err := p.Run(context.Background())
	require.NoError(t, err)

	a := m.Assets["a"]
	assert.Equal(t, b.BuildURL("static/a.png", ixurl.Params{}), a.URL)
	assert.Empty(t, a.Placeholder)
	assert.Equal(t, 3, m.Stats.TotalURLs)
}

func TestRun_Failures(t *testing.T) {
	b := testBuilder(t)

	t.Run("empty dir", func(t *testing.T) {
		p, err := New(Config{InputDir: t.TempDir(), Profile: testProfile}, b, zerolog.Nop())
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.ErrorContains(t, err, "no images found")
	})

	t.Run("every source fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "x.jpg"), []byte("junk"), 0o644))
		p, err := New(Config{InputDir: dir, Profile: testProfile}, b, zerolog.Nop())
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.ErrorContains(t, err, "all 1 images failed")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p, err := New(Config{InputDir: writeFixtures(t), Profile: testProfile}, b, zerolog.Nop())
		require.NoError(t, err)
		_, err = p.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := New(Config{InputDir: t.TempDir(), Formats: []string{"heic"}}, b, zerolog.Nop())
		assert.Error(t, err)
	})
}
