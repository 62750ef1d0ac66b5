package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Component string
	Limit     int
}

// RunSummary is the JSON shape of one run in history output.
type RunSummary struct {
	ID        int64    `json:"id"`
	Component string   `json:"component"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Inputs    []string `json:"inputs"`
	Outputs   []string `json:"outputs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a component's recorded runs",
		Long: `Show a component's runs, most recently started first.

Examples:
  golineage history --db ./lineage.db --component training
  golineage history --db ./lineage.db --component training --limit 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Component, "component", "", "component name (required)")
	_ = cmd.MarkFlagRequired("component")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum runs to show (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	svc, err := opts.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	runs, err := svc.GetHistory(context.Background(), opts.Component, opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, RunSummary{
			ID:        run.ID,
			Component: run.ComponentName,
			Start:     run.StartTimestamp.Format(time.RFC3339),
			End:       run.EndTimestamp.Format(time.RFC3339),
			Inputs:    run.InputNames(),
			Outputs:   run.OutputNames(),
		})
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No runs recorded for component: %s\n", opts.Component)
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s  %s -> %s\n", s.ID, s.Component, s.Start, s.End)
		if opts.Verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "     inputs:  %s\n", strings.Join(s.Inputs, ", "))
			fmt.Fprintf(cmd.OutOrStdout(), "     outputs: %s\n", strings.Join(s.Outputs, ", "))
		}
	}
	return nil
}
