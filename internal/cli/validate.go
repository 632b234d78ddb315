package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	URL      string   `json:"url"`
	Policies []string `json:"policies"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <policies-url>",
		Short: "Validate policy declarations",
		Long: `Load policy declarations and build every declared policy.

Fails when the document cannot be read, a declaration is incomplete, the kind is
unknown, or the kind does not apply at the declared point.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, URL string) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	srv, err := newService(cmd.Context(), opts)
	if err != nil {
		return formatter.Failure(ExitCommandError, "failed to create service", err)
	}
	defer srv.Close()
	formatter.VerboseLog("loading policies from %s", URL)
	if err = srv.LoadPolicies(cmd.Context(), URL); err != nil {
		return formatter.Failure(ExitFailure, "invalid policies", err)
	}
	result := &ValidationResult{URL: URL, Policies: srv.Policies().Names()}
	return formatter.Success(result, fmt.Sprintf("✓ %d policies valid: %s", len(result.Policies), strings.Join(result.Policies, ", ")))
}
