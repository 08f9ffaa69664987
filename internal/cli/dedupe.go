package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toolshub/internal/compression"
	"github.com/jmylchreest/toolshub/internal/text"
)

type dedupeOptions struct {
	*rootOptions

	output string
}

func newDedupeCmd(root *rootOptions) *cobra.Command {
	o := &dedupeOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "dedupe [file]",
		Short: "Remove duplicate lines from text",
		Long: `Remove repeated lines, keeping the first occurrence of each in its
original position. Lines must match exactly to count as duplicates.

Reads the named file, or standard input when no file is given. Input
compressed with gzip, bzip2 or xz is decompressed automatically.

Examples:
  toolshub dedupe emails.txt
  sort names.txt | toolshub dedupe -o unique.txt
  toolshub dedupe access.log.gz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (o *dedupeOptions) run(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, format, err := compression.ReadAll(in, compression.DefaultMaxBytes)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if format != compression.FormatNone {
		o.log().Debug("decompressed input", "format", format, "bytes", len(data))
	}

	res, err := text.RemoveDuplicateLines(string(data))
	if err != nil {
		return err
	}

	if err := writeOutput(cmd, o.output, res.Output); err != nil {
		return err
	}
	o.log().Info("removed duplicate lines", "total", res.Total, "unique", res.Unique, "removed", res.Removed)
	return nil
}
