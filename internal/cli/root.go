// Package cli provides the command-line interface for toolshub.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toolshub/internal/logging"
	"github.com/jmylchreest/toolshub/internal/version"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	verbose    bool
	quiet      bool
	configFile string

	logger hclog.Logger
}

func (o *rootOptions) log() hclog.Logger {
	if o.logger == nil {
		return logging.Discard()
	}
	return o.logger
}

// NewRootCmd builds the toolshub command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "Everyday office tools from the command line",
		Long: `toolshub bundles the small utilities behind the Office Tools Hub site.

Extract the dominant colours of an image, strip duplicate lines from text,
work out zakat due on your assets, or run the web server that hosts the
browser versions of these tools.`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = logging.New(logging.Options{
				Name:    version.Name,
				Verbose: opts.verbose,
				Quiet:   opts.quiet,
				Output:  cmd.ErrOrStderr(),
			})
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: data/toolshub.ini if present)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newExtractCmd(opts),
		newDedupeCmd(opts),
		newZakatCmd(opts),
		newServeCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, data string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), data)
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
