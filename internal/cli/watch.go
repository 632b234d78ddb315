package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the command reloading a local policy file on change.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "watch <policies-file>",
		Short:         "Reload policy declarations whenever the file changes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv, err := newService(ctx, rootOpts)
			if err != nil {
				return formatter.Failure(ExitCommandError, "failed to create service", err)
			}
			defer srv.Close()
			err = srv.WatchPolicies(ctx, args[0], func(err error) {
				if err != nil {
					fmt.Fprintf(formatter.Writer, "reload failed: %v\n", err)
					return
				}
				names := srv.Policies().Names()
				_ = formatter.Success(names, "reloaded: "+strings.Join(names, ", "))
			})
			if err != nil {
				return formatter.Failure(ExitFailure, "failed to watch policies", err)
			}
			return nil
		},
	}
}
