package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/hamal"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	ConfigURL string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hamal CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hamal",
		Short: "hamal - async dispatch with policy chains",
		Long:  "Validate policy declarations and run compound dispatches through the async middleware.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigURL, "config", "c", "", "config URL (yaml|json)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewKindsCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	return cmd
}

// newService creates the service from --config, or the default config with logging reduced to errors
func newService(ctx context.Context, opts *RootOptions, options ...hamal.Option) (*hamal.Service, error) {
	cfg := hamal.DefaultConfig()
	if opts.ConfigURL != "" {
		var err error
		if cfg, err = hamal.LoadConfig(ctx, opts.ConfigURL); err != nil {
			return nil, err
		}
	} else if !opts.Verbose {
		cfg.Logging.Level = "error"
	}
	return hamal.NewFromConfig(ctx, cfg, options...)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
