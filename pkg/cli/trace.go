package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Output string
	Web    bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Reconstruct the upstream lineage of an artifact",
		Long: `Walk the recorded dependency edges upstream from the run that most
recently produced the named artifact.

The default output is a flat, depth-indented listing. With --web the
nested tree consumed by the visualization front end is printed as JSON.

Examples:
  golineage trace --db ./lineage.db --output predictions.csv
  golineage trace --db ./lineage.db --output predictions.csv --web`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceCmd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Output, "output", "", "artifact name to trace (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().BoolVar(&opts.Web, "web", false, "emit the nested visualization tree as JSON")

	return cmd
}

func runTraceCmd(opts *TraceOptions, cmd *cobra.Command) error {
	svc, err := opts.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()

	if opts.Web {
		nodes, err := svc.WebTrace(ctx, opts.Output)
		if err != nil {
			return fmt.Errorf("failed to trace %q: %w", opts.Output, err)
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(nodes)
	}

	steps, err := svc.Trace(ctx, opts.Output)
	if err != nil {
		return fmt.Errorf("failed to trace %q: %w", opts.Output, err)
	}

	if opts.Format == "json" {
		type stepJSON struct {
			Depth     int    `json:"depth"`
			RunID     int64  `json:"runId"`
			Component string `json:"component"`
		}
		out := make([]stepJSON, 0, len(steps))
		for _, step := range steps {
			out = append(out, stepJSON{Depth: step.Depth, RunID: step.Run.ID, Component: step.Run.ComponentName})
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	for _, step := range steps {
		fmt.Fprintf(cmd.OutOrStdout(), "%s[%d] %s\n",
			strings.Repeat("  ", step.Depth), step.Run.ID, step.Run.ComponentName)
	}
	return nil
}
