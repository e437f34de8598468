package cmd

import (
	"fmt"

	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/ui"
	"github.com/spf13/cobra"
)

func newSetCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "set <version>",
		Short: "Store a version and patch it into all artifacts, without git",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show which files would change")

	return cmd
}

func runSet(cmd *cobra.Command, version string, dryRun bool) error {
	if err := release.ValidateVersion(version); err != nil {
		return err
	}

	p, err := loadProject(cmd, !dryRun)
	if err != nil {
		return err
	}
	defer p.close()

	u := ui.New(cmd.OutOrStdout())
	orch := p.orchestrator(u, nil, release.Options{Version: version, DryRun: dryRun})

	st, err := orch.ResolveOnly(cmd.Context())
	if err != nil {
		if release.IsPatchFailure(err) && st.VersionChanged && !dryRun {
			u.Info(fmt.Sprintf("%s was updated; fix the artifact above and run 'shipver set %s' again", p.cfg.GetVersionFile(), version))
		}
		return err
	}

	changed := 0
	for _, r := range st.Reports {
		if r.Result == release.Changed {
			changed++
		}
	}
	if st.VersionChanged {
		changed++
	}
	if changed == 0 {
		u.Info(fmt.Sprintf("Everything already at %s", st.Version))
		return nil
	}
	if dryRun {
		u.Info(fmt.Sprintf("%d file(s) would change", changed))
		return nil
	}
	u.Success(fmt.Sprintf("%d file(s) set to %s", changed, st.Version))
	return nil
}
