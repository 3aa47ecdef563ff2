package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ixurl"
	"github.com/AnyUserName/ixurl/internal/manifest"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest_path>",
		Short: "Validate a manifest and verify its URL signatures",
		Long: `Checks the manifest structure and stats. When the manifest was built
signed and a sign key is configured, every URL's signature is recomputed
and compared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runValidate(args[0])
		},
	}
}

func (a *app) runValidate(manifestPath string) error {
	m, err := manifest.ReadJSON(manifestPath)
	if err != nil {
		return err
	}

	var verify manifest.VerifyFunc
	switch {
	case !m.Signed:
	case a.cfg.SignKey == "":
		a.printer.Warning("manifest is signed but no sign key is configured; signatures not checked")
	case len(m.Domains) > 0:
		b, err := ixurl.New(m.Domains, ixurl.WithSignKey(a.cfg.SignKey), ixurl.WithLogger(a.log))
		if err != nil {
			return err
		}
		verify = b.Verify
	}

	errs := manifest.Check(m, verify)
	if len(errs) == 0 {
		a.printer.Success("Manifest is valid")
		a.printer.Success("%d assets, %d urls", m.Stats.TotalAssets, m.Stats.TotalURLs)
		if verify != nil {
			a.printer.Success("all signatures match")
		}
		return nil
	}

	a.printer.Error("Manifest has %d error(s):", len(errs))
	for _, e := range errs {
		a.printer.Error("  %s", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
