package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "url <path> [key=value ...]",
		Short: "Print the URL for an image path",
		Example: `  ixurl url users/1.png w=400 h=300 --domain demo.imgix.net
  ixurl url https://example.com/img.png --sign-key FOO123bar`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			b, err := a.builder()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.BuildURL(args[0], params))
			return nil
		},
	}
}
