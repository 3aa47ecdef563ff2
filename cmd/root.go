// Package cmd contains the ixurl command line interface.
package cmd

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/config"
	"github.com/AnyUserName/ixurl/internal/output"
)

// app is the state shared by one command tree.
type app struct {
	cfgFile   string
	verbose   bool
	plainHTTP bool
	noLibrary bool

	cfg     *config.Config
	log     zerolog.Logger
	printer *output.Printer
}

// NewRootCmd builds the ixurl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "ixurl",
		Short: "Build, sign and shard image service URLs",
		Long: `ixurl builds URLs for an imgix-style rendering service: escaped paths,
ordered query parameters, MD5 signatures and domain sharding.

It also generates responsive srcset attributes and can scan a directory of
images into a manifest of ready-to-use URLs.`,
		Version:       ixurl.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default is ./ixurl.toml)")
	f.StringSlice("domain", nil, "image service domain, repeatable (shards when more than one)")
	f.String("sign-key", "", "secure URL token; enables signing")
	f.String("shard", "", "shard strategy: none, crc or cycle")
	f.BoolVar(&a.plainHTTP, "http", false, "build http:// URLs")
	f.BoolVar(&a.noLibrary, "no-ixlib", false, "omit the ixlib parameter")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.SetVersionTemplate(fmt.Sprintf(
		"ixurl %s (%s/%s, %s)\n",
		ixurl.Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))

	root.AddCommand(
		newURLCmd(a),
		newSrcSetCmd(a),
		newWidthsCmd(a),
		newBuildCmd(a),
		newValidateCmd(a),
		newStatsCmd(a),
	)
	return root
}

// Execute runs the CLI and reports a failure on stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		output.NewPrinterWithWriters(root.OutOrStdout(), root.ErrOrStderr(), output.ResolveColors(true)).Error("%v", err)
		return err
	}
	return nil
}

// setup loads configuration and sets up logging and output.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.plainHTTP {
		cfg.UseHTTPS = false
	}
	if a.noLibrary {
		cfg.IncludeLibraryParam = false
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	a.printer = output.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(cfg.Output.Colors))

	a.log.Debug().
		Strs("domains", cfg.Domains).
		Bool("signed", cfg.SignKey != "").
		Str("shard", cfg.Shard).
		Msg("configuration loaded")
	return nil
}

// builder returns a builder for the configured domains.
func (a *app) builder() (*ixurl.Builder, error) {
	b, err := a.cfg.NewBuilder(a.log)
	if err != nil {
		return nil, fmt.Errorf("%w (set --domain or domains in ixurl.toml)", err)
	}
	return b, nil
}

// parseParams turns "key=value" arguments into ordered params.
func parseParams(args []string) (ixurl.Params, error) {
	var p ixurl.Params
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return ixurl.Params{}, fmt.Errorf("invalid parameter %q (want key=value)", arg)
		}
		p.Set(k, v)
	}
	return p, nil
}
