package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/profile"
)

// dprTriggers names the selectable DPR mode predicates.
var dprTriggers = map[string]ixurl.DPRTrigger{
	"width-or-height":    ixurl.HasWidthOrHeight,
	"width":              ixurl.HasWidth,
	"width-or-height-ar": ixurl.HasWidthOrHeightWithAspectRatio,
}

type srcsetFlags struct {
	ladder      ixurl.Ladder
	widths      []int
	noVariableQ bool
	profile     string
	trigger     string
}

func newSrcSetCmd(a *app) *cobra.Command {
	f := srcsetFlags{ladder: ixurl.DefaultLadder}

	cmd := &cobra.Command{
		Use:   "srcset <path> [key=value ...]",
		Short: "Print a srcset attribute for an image path",
		Long: `Prints a srcset attribute value. Params that fix the rendered size
(w or h by default) produce 1x-5x density candidates; otherwise the width
ladder produces width candidates.`,
		Example: `  ixurl srcset image.jpg w=100
  ixurl srcset image.jpg --begin 500 --end 2000
  ixurl srcset image.jpg --widths 144,240,320,446,640`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			opts, params, err := f.options(cmd, params)
			if err != nil {
				return err
			}
			b, err := a.builder()
			if err != nil {
				return err
			}
			srcset, err := b.BuildSrcSet(args[0], params, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), srcset)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.ladder.Begin, "begin", ixurl.DefaultBegin, "smallest ladder width")
	fl.IntVar(&f.ladder.End, "end", ixurl.DefaultEnd, "largest ladder width")
	fl.Float64Var(&f.ladder.Tolerance, "tolerance", ixurl.DefaultTolerance, "allowed width deviation between rungs")
	fl.IntSliceVar(&f.widths, "widths", nil, "explicit widths (override the ladder)")
	fl.BoolVar(&f.noVariableQ, "no-variable-quality", false, "do not lower q on dense screens")
	fl.StringVarP(&f.profile, "profile", "p", "", "take widths and params from a build profile")
	fl.StringVar(&f.trigger, "dpr-trigger", "width-or-height", "params that select density mode: width-or-height, width or width-or-height-ar")
	return cmd
}

// options resolves flags into srcset options. A profile contributes its
// widths and params; explicit flags and arguments win over it.
func (f *srcsetFlags) options(cmd *cobra.Command, params ixurl.Params) (ixurl.SrcSetOptions, ixurl.Params, error) {
	trigger, ok := dprTriggers[f.trigger]
	if !ok {
		return ixurl.SrcSetOptions{}, params, fmt.Errorf("unknown dpr trigger %q", f.trigger)
	}
	opts := ixurl.SrcSetOptions{
		DisableVariableQuality: f.noVariableQ,
		DPRTrigger:             trigger,
	}

	if f.profile != "" {
		prof := profile.Get(f.profile)
		widths, err := prof.TargetWidths()
		if err != nil {
			return opts, params, err
		}
		opts.Widths = widths

		merged := prof.URLParams("")
		for _, k := range params.Keys() {
			v, _ := params.Get(k)
			merged.Set(k, v)
		}
		params = merged
	}

	fl := cmd.Flags()
	if fl.Changed("begin") || fl.Changed("end") || fl.Changed("tolerance") {
		ladder := f.ladder
		opts.Ladder = &ladder
		opts.Widths = nil
	}
	if fl.Changed("widths") {
		opts.Widths = f.widths
	}
	return opts, params, nil
}
