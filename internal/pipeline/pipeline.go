package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/format"
	"github.com/AnyUserName/ixurl/internal/manifest"
	"github.com/AnyUserName/ixurl/internal/profile"
)

// DefaultPlaceholderWidth is the width of the blurred placeholder URL.
const DefaultPlaceholderWidth = 32

// Config holds all parameters for a build pipeline run.
type Config struct {
	InputDir string
	Profile  profile.Profile
	Workers  int
	// PathPrefix is prepended to each source's relative path in URLs.
	PathPrefix string
	// Formats restricts the enabled output formats. Empty enables all.
	Formats []string
	// PlaceholderWidth sizes the placeholder URL; negative disables it,
	// zero means DefaultPlaceholderWidth.
	PlaceholderWidth int
}

// Pipeline probes source images and builds their URLs.
type Pipeline struct {
	cfg      Config
	builder  *ixurl.Builder
	registry *format.Registry
	log      zerolog.Logger
}

// New creates a configured pipeline. URLs are produced by b, which is
// shared by all workers.
func New(cfg Config, b *ixurl.Builder, log zerolog.Logger) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.PlaceholderWidth == 0 {
		cfg.PlaceholderWidth = DefaultPlaceholderWidth
	}
	registry, err := format.NewRegistry(cfg.Formats...)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		builder:  b,
		registry: registry,
		log:      log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Run executes the full build pipeline and returns the manifest. A source
// that fails is logged and left out; the run fails only when every
// source does or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	p.log.Debug().Str("registry", p.registry.String()).Msg("formats")

	// Step 1: Scan for images.
	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	p.log.Debug().Int("sources", len(sources)).Msg("scan complete")

	// Step 2: Process images in parallel.
	results := make([]processResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.log.Debug().Str("key", src.Key).Msg("processing")

			results[i] = p.processImage(src)

			if results[i].err == nil {
				p.log.Debug().Str("key", src.Key).Int("srcsets", len(results[i].asset.SrcSets)).Msg("done")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 3: Collect results into manifest.
	m := manifest.New(p.cfg.Profile.Name, p.builder.Domains(), p.builder.Signed())

	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		m.Assets[r.key] = r.asset
	}

	// Report errors but don't fail the entire build for partial failures.
	if len(errs) > 0 {
		for _, e := range errs {
			p.log.Error().Err(e).Msg("source failed")
		}
		if len(errs) == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process: %w", len(errs), errors.Join(errs...))
		}
		p.log.Warn().Msgf("%d of %d images had errors", len(errs), len(sources))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		Shard:   p.builder.ShardStrategy().String(),
	}
	m.Stats.Failed = len(errs)
	m.ComputeStats()
	return m, nil
}
