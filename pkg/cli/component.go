package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dan-solli/golineage/pkg/store"
)

// CreateComponentOptions holds flags for the create-component command.
type CreateComponentOptions struct {
	*RootOptions
	Name        string
	Description string
	Owner       string
	Tags        []string
}

// NewCreateComponentCommand creates the create-component command.
func NewCreateComponentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateComponentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-component",
		Short: "Register a named processing unit",
		Long: `Register a component so its runs can be tracked.

Re-registering an existing name is a no-op.

Examples:
  golineage create-component --db ./lineage.db --name cleaning --owner ana
  golineage create-component --db ./lineage.db --name training --owner ana --tags ml,daily`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateComponent(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "component name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "component description")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "component owner")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "comma-separated tag names")

	return cmd
}

func runCreateComponent(opts *CreateComponentOptions, cmd *cobra.Command) error {
	svc, err := opts.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.CreateComponent(context.Background(), opts.Name, opts.Description, opts.Owner, opts.Tags); err != nil {
		return fmt.Errorf("failed to create component: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered component: %s\n", opts.Name)
	return nil
}

// TagOptions holds flags for the tag command.
type TagOptions struct {
	*RootOptions
	Component string
	Tags      []string
}

// NewTagCommand creates the tag command.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TagOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Attach tags to an existing component",
		Long: `Attach tag names to a registered component with set semantics.

Examples:
  golineage tag --db ./lineage.db --component training --tags ml,nightly`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTag(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Component, "component", "", "component name (required)")
	_ = cmd.MarkFlagRequired("component")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "comma-separated tag names (required)")
	_ = cmd.MarkFlagRequired("tags")

	return cmd
}

func runTag(opts *TagOptions, cmd *cobra.Command) error {
	svc, err := opts.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.TagComponent(context.Background(), opts.Component, opts.Tags); err != nil {
		return fmt.Errorf("failed to tag component: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s with: %s\n", opts.Component, strings.Join(opts.Tags, ", "))
	return nil
}

// ComponentsOptions holds flags for the components command.
type ComponentsOptions struct {
	*RootOptions
	Owner string
	Tag   string
}

// NewComponentsCommand creates the components command.
func NewComponentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComponentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List components by owner or tag",
		Long: `List registered components matching an owner or a tag.

Exactly one of --owner or --tag must be given.

Examples:
  golineage components --db ./lineage.db --owner ana
  golineage components --db ./lineage.db --tag ml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "filter by owner")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "filter by tag name")

	return cmd
}

func runComponents(opts *ComponentsOptions, cmd *cobra.Command) error {
	if (opts.Owner == "") == (opts.Tag == "") {
		return fmt.Errorf("exactly one of --owner or --tag must be given")
	}

	svc, err := opts.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	var components []*store.Component
	if opts.Owner != "" {
		components, err = svc.ComponentsWithOwner(ctx, opts.Owner)
	} else {
		components, err = svc.ComponentsWithTag(ctx, opts.Tag)
	}
	if err != nil {
		return fmt.Errorf("failed to list components: %w", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(components)
	}

	if len(components) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching components")
		return nil
	}
	for _, c := range components {
		line := c.Name
		if c.Owner != "" {
			line += fmt.Sprintf(" (owner: %s)", c.Owner)
		}
		if len(c.Tags) > 0 {
			names := make([]string, len(c.Tags))
			for i, t := range c.Tags {
				names[i] = t.Name
			}
			line += fmt.Sprintf(" [%s]", strings.Join(names, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
