package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewKindsCommand creates the command listing declarable policy kinds.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "kinds",
		Short:         "List policy kinds available to declarations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			srv, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return formatter.Failure(ExitCommandError, "failed to create service", err)
			}
			defer srv.Close()
			kinds := srv.Builder().Kinds()
			return formatter.Success(kinds, strings.Join(kinds, "\n"))
		},
	}
}
