package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/hamal"
	"github.com/viant/hamal/model/action"
	"github.com/viant/hamal/policy"
	"github.com/viant/hamal/service/dispatcher"
	"github.com/viant/hamal/service/store"
)

// RunOptions holds run command flags.
type RunOptions struct {
	PolicyURL string
	Policies  []string
	Meta      map[string]string
	Timeout   time.Duration
}

// RunResult holds phase actions reaching the store and the dispatch outcome.
type RunResult struct {
	Phases []*action.Action `json:"phases"`
	Value  interface{}      `json:"value,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run <request-type> <response-type> <source-url>",
		Short: "Dispatch a compound action downloading source-url",
		Long: `Dispatch a compound action through the async middleware. The task downloads
source-url with afs; the request and response phase actions are printed as they
reach the store.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd, rootOpts, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.PolicyURL, "policies", "p", "", "policy declarations URL")
	cmd.Flags().StringSliceVar(&opts.Policies, "apply", nil, "policy names applied to the dispatch")
	cmd.Flags().StringToStringVar(&opts.Meta, "meta", nil, "meta key=value pairs")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "dispatch timeout")
	return cmd
}

func runDispatch(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	result := &RunResult{}
	var mux sync.Mutex
	srv, err := newService(ctx, rootOpts, hamal.WithListener(func(phase string, anAction *action.Action) {
		mux.Lock()
		result.Phases = append(result.Phases, anAction)
		mux.Unlock()
		formatter.VerboseLog("%s: %s", phase, anAction.Type)
	}))
	if err != nil {
		return formatter.Failure(ExitCommandError, "failed to create service", err)
	}
	defer srv.Close()
	if opts.PolicyURL != "" {
		if err = srv.LoadPolicies(ctx, opts.PolicyURL); err != nil {
			return formatter.Failure(ExitCommandError, "failed to load policies", err)
		}
	}

	fs := afs.New()
	download := func(ctx context.Context, store policy.Store, notify dispatcher.Notify, compound *action.Compound) (interface{}, error) {
		URL, _ := compound.Payload.(string)
		data, err := fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
	meta := action.Meta{}
	for k, v := range opts.Meta {
		meta[k] = v
	}
	if len(opts.Policies) > 0 {
		meta[action.PoliciesKey] = opts.Policies
	}
	st := srv.NewStore(nil, nil, download)
	value, err := dispatchWithin(ctx, st, &action.Compound{
		Type:    []string{args[0], args[1]},
		Meta:    meta,
		Payload: args[2],
	}, opts.Timeout)

	mux.Lock()
	defer mux.Unlock()
	result.Value = value
	if err != nil {
		result.Error = err.Error()
		if rootOpts.Format != "json" {
			fmt.Fprint(formatter.Writer, phasesText(result.Phases))
		}
		return formatter.Failure(ExitFailure, "dispatch rejected", err)
	}
	return formatter.Success(result, phasesText(result.Phases)+fmt.Sprintf("value: %v", value))
}

// dispatchWithin bounds both the task and the wait by timeout
func dispatchWithin(ctx context.Context, st *store.Store, compound *action.Compound, timeout time.Duration) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return dispatcher.Await(ctx, st.Dispatch(ctx, compound))
}

func phasesText(phases []*action.Action) string {
	var builder strings.Builder
	for _, phase := range phases {
		fmt.Fprintf(&builder, "%s %v\n", phase.Type, phase.Meta)
	}
	return builder.String()
}
