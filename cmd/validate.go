package cmd

import (
	"fmt"

	"github.com/rubrical-studios/shipver/internal/release"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <version>",
		Short: "Check that a version has the X.Y.Z form",
		Long: `Check that a version has the X.Y.Z form: three dot-separated groups of
digits, no prefix, no whitespace, no pre-release suffix. Exits non-zero
when the version is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := release.ValidateVersion(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid version\n", args[0])
			return nil
		},
	}
}
