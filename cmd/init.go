package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rubrical-studios/shipver/internal/config"
	"github.com/rubrical-studios/shipver/internal/defaults"
	"github.com/rubrical-studios/shipver/internal/ui"
	"github.com/spf13/cobra"
)

// initOptions holds the command-line options for init
type initOptions struct {
	force bool
	app   string
}

func newInitCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter .shipver.yml in the current directory",
		Long: `Create a starter .shipver.yml in the current directory.

The starter configuration stores the version in VERSION, tags releases as
v<version>, tidies go.mod before patching and declares an installer script
and optional desktop entries named after the application. Edit the artifacts
to match the project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing .shipver.yml")
	cmd.Flags().StringVar(&opts.app, "app", "", "Application name used in artifact names (default: directory name)")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	dir, err := workingDir(cmd)
	if err != nil {
		return err
	}
	u := ui.New(cmd.OutOrStdout())

	path := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !opts.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	app := opts.app
	if app == "" {
		app = filepath.Base(dir)
	}
	if err := os.WriteFile(path, []byte(defaults.Starter(app)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	u.Success(fmt.Sprintf("Created %s", config.ConfigFileName))

	// Catch template mistakes before the first release does
	if _, _, err := config.LoadProject(dir); err != nil {
		return err
	}

	starter, err := defaults.Load(app)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, starter.VersionFile)); errors.Is(err, fs.ErrNotExist) {
		u.Warning(fmt.Sprintf("%s does not exist yet; create it with the current version, e.g. 0.1.0", starter.VersionFile))
	}

	for _, a := range starter.Artifacts {
		u.Info(fmt.Sprintf("Artifact %s (%s): %s", a.Name, a.Kind, strings.Join(a.Files, ", ")))
	}
	return nil
}
