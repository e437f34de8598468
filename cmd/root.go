package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	pkgversion "github.com/rubrical-studios/shipver/internal/version"
	"github.com/spf13/cobra"
)

// version is set by ldflags during release builds.
// When empty (default), falls back to the source constant in internal/version.
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.Version
}

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipver",
		Short: "Cut a release: sync the version, commit, tag and push",
		Long: `shipver cuts a release of the project in the current directory.

It keeps the stored version (VERSION by default) and every configured artifact
(installer scripts, desktop entries, Go constants, custom patterns) in sync,
then stages, commits, tags and pushes, stopping at the first failing step.

Configuration lives in .shipver.yml; run 'shipver init' to create one.

Use 'shipver <command> --help' for more information about a command.`,
		Version:      getVersion(),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("dir", "C", "", "Run as if shipver was started in this directory")

	cmd.AddCommand(newReleaseCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

// Execute runs the root command; Ctrl-C cancels the running child command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// workingDir returns the --dir flag value or the process working directory
func workingDir(cmd *cobra.Command) (string, error) {
	var dir string
	if f := cmd.Flag("dir"); f != nil {
		dir = f.Value.String()
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid --dir %s: %w", dir, err)
	}
	return abs, nil
}
