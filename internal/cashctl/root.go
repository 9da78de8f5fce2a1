// Package cashctl is the offline command line front end of the cash engine:
// change proposals, pump reconciliation and bundling plans without a server.
package cashctl

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/easyplus-cash-ledger/internal/logger"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type options struct {
	output  string
	verbose bool
}

// NewRootCommand builds the cashctl command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "cashctl",
		Short:         "Cash engine tools for the station office",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputJSON && opts.output != outputYAML {
				return fmt.Errorf("unsupported output %q, use json or yaml", opts.output)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputJSON, "Output format: json or yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log input substitutions to stderr")

	root.AddCommand(
		newChangeCommand(opts),
		newReconcileCommand(opts),
		newBundlesCommand(opts),
	)
	return root
}

// Execute runs cashctl and exits non-zero on error
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return logger.New(cmd.ErrOrStderr(), level)
}

func (o *options) write(w io.Writer, v any) error {
	if o.output == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
