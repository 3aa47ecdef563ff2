package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/output"
)

func newWidthsCmd(_ *app) *cobra.Command {
	ladder := ixurl.DefaultLadder

	cmd := &cobra.Command{
		Use:   "widths",
		Short: "Show the srcset width ladder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			widths, err := ixurl.GenerateTargetWidths(ladder)
			if err != nil {
				return err
			}

			t := output.NewTable(cmd.OutOrStdout(), "#", "width", "step")
			for i, w := range widths {
				step := "-"
				if i > 0 {
					step = strconv.FormatFloat(float64(w)/float64(widths[i-1]), 'f', 3, 64)
				}
				t.AddRow(strconv.Itoa(i+1), strconv.Itoa(w), step)
			}
			return t.Render()
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&ladder.Begin, "begin", ixurl.DefaultBegin, "smallest width")
	fl.IntVar(&ladder.End, "end", ixurl.DefaultEnd, "largest width")
	fl.Float64Var(&ladder.Tolerance, "tolerance", ixurl.DefaultTolerance, "allowed width deviation between rungs")
	return cmd
}
