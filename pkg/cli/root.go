// Package cli implements the golineage command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dan-solli/golineage/pkg/config"
	"github.com/dan-solli/golineage/pkg/lineage"
	"github.com/dan-solli/golineage/pkg/oplog"
	"github.com/dan-solli/golineage/pkg/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the golineage CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "golineage",
		Short: "golineage - pipeline provenance tracker",
		Long:  "Records component runs with their input and output artifacts and reconstructs artifact lineage from history.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewCreateComponentCommand(opts))
	cmd.AddCommand(NewTagCommand(opts))
	cmd.AddCommand(NewComponentsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// openService builds a Service from config and global flags. The caller
// must Close it.
func (o *RootOptions) openService() (*lineage.Service, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Database != "" {
		cfg.Database.URI = o.Database
	}

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := store.NewSQLiteLineageStore(cfg.DatabasePath(), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	serviceOpts := []lineage.Option{lineage.WithLogger(logger)}
	if cfg.OperationLog.Path != "" {
		exporter, err := oplog.NewFileExporter(cfg.OperationLog.Path)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to open operation log: %w", err)
		}
		serviceOpts = append(serviceOpts, lineage.WithOperationLog(exporter))
	}

	svc, err := lineage.New(st, serviceOpts...)
	if err != nil {
		st.Close()
		return nil, err
	}
	return svc, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
