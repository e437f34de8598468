package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/rubrical-studios/shipver/internal/ui"
	"github.com/spf13/cobra"
)

// releaseOptions holds the command-line options for release
type releaseOptions struct {
	version string
	keep    bool
	message string
	yes     bool
	dryRun  bool
	noPush  bool
}

func newReleaseCommand() *cobra.Command {
	opts := &releaseOptions{}

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Sync the version into all artifacts, then commit, tag and push",
		Long: `Cut a release of the current project.

Steps, in order:
  1. Resolve the version (keep the stored one or enter a new X.Y.Z)
  2. Run the prepare commands (default: go mod tidy)
  3. Patch every configured artifact with the version
  4. Stage the version file, patched artifacts and build manifests
  5. Commit and push, unless nothing changed
  6. Create an annotated tag <prefix><version>
  7. Push the tag
  8. Publish a GitHub release (when github.release is enabled)

The first failing step stops the run. Nothing is rolled back; the error
output says which step failed so it can be finished by hand.

Non-interactive use: --version or --keep choose the version, --message sets
the commit message, --yes accepts the defaults for everything else.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "Release this version instead of asking (X.Y.Z)")
	cmd.Flags().BoolVar(&opts.keep, "keep", false, "Release the stored version without asking")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "Release commit message")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Accept defaults for every prompt")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would change without writing files or running commands")
	cmd.Flags().BoolVar(&opts.noPush, "no-push", false, "Commit and tag locally without pushing")
	cmd.MarkFlagsMutuallyExclusive("version", "keep")

	return cmd
}

func runRelease(cmd *cobra.Command, opts *releaseOptions) error {
	if opts.version != "" {
		if err := release.ValidateVersion(opts.version); err != nil {
			return err
		}
	}

	p, err := loadProject(cmd, !opts.dryRun)
	if err != nil {
		return err
	}
	defer p.close()

	u := ui.New(cmd.OutOrStdout())
	u.Header("shipver release", filepath.Base(p.root))

	console := newConsolePrompter(cmd.InOrStdin(), cmd.OutOrStdout(), u)
	prompter := &flagPrompter{keep: opts.keep, yes: opts.yes, message: opts.message, next: console}

	orch := p.orchestrator(u, prompter, release.Options{
		Prepare:    p.cfg.PrepareCommands(),
		StageExtra: p.cfg.Stage,
		Push:       p.cfg.ShouldPush() && !opts.noPush,
		Version:    opts.version,
		DryRun:     opts.dryRun,
	})

	if p.cfg.GitHub.Release && !opts.dryRun {
		publisher, err := newPublisher(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("github release enabled but client unavailable: %w", err)
		}
		orch.Publisher = publisher
	}

	st, err := orch.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, release.ErrMissingPersistedVersion) {
			u.Failure(fmt.Sprintf("%s not found; create it or pass --version", p.cfg.GetVersionFile()))
		}
		if path := p.logger.Path(); path != "" {
			u.Info(fmt.Sprintf("Log: %s", path))
		}
		return fmt.Errorf("release aborted at %s: %w", st.Step, err)
	}
	return nil
}
