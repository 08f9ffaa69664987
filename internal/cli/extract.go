package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toolshub/internal/colour"
	"github.com/jmylchreest/toolshub/internal/image"
	"github.com/jmylchreest/toolshub/internal/util/imagecache"
)

var outputFormats = []string{"table", "hex", "rgb", "hsl", "json"}

type extractOptions struct {
	*rootOptions

	colours      int
	algorithm    string
	format       string
	output       string
	preview      bool
	maxDimension int
	allowPrivate bool
	cache        bool
}

// sourceReport tags a report with the image it came from.
type sourceReport struct {
	Source string `json:"source"`
	*colour.Report
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	o := &extractOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the dominant colours of an image",
		Long: `Extract the most frequent colours of an image.

Pixels are counted by exact colour, ignoring mostly transparent ones, and
the most common colours are listed first. The prominent algorithm clusters
similar colours with k-means instead of counting exact values.

The argument may be a file, a directory (every image inside is processed)
or an http(s) URL. Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # List the dominant colours of an image
  toolshub extract photo.jpg

  # Top 5 colours as JSON
  toolshub extract -c 5 -f json photo.png

  # Hex codes with terminal swatches
  toolshub extract --preview -f hex logo.png

  # Cluster similar shades on a downscaled copy
  toolshub extract -a prominent --max-dimension 200 photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&o.colours, "colours", "c", colour.MaxColours, fmt.Sprintf("number of colours to list (1-%d)", colour.MaxColours))
	flags.StringVarP(&o.algorithm, "algorithm", "a", string(colour.AlgorithmDominant), "extraction algorithm (dominant, prominent)")
	flags.StringVarP(&o.format, "format", "f", "table", "output format ("+strings.Join(outputFormats, ", ")+")")
	flags.StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	flags.BoolVar(&o.preview, "preview", false, "show colour swatches in terminal output")
	flags.IntVar(&o.maxDimension, "max-dimension", 0, "downscale images so neither side exceeds this many pixels (0 disables)")
	flags.BoolVar(&o.allowPrivate, "allow-private-hosts", false, "allow image URLs on loopback and private networks")
	flags.BoolVar(&o.cache, "cache", false, "cache downloaded images under the user cache directory")

	return cmd
}

func (o *extractOptions) run(cmd *cobra.Command, target string) error {
	cfg := colour.ExtractorConfig{
		Algorithm:   colour.Algorithm(o.algorithm),
		ColourCount: o.colours,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !slices.Contains(outputFormats, o.format) {
		return fmt.Errorf("unsupported format: %s (supported: %s)", o.format, strings.Join(outputFormats, ", "))
	}
	if o.maxDimension < 0 {
		return fmt.Errorf("max-dimension must not be negative, got %d", o.maxDimension)
	}

	paths, err := image.ResolveImagePaths(target)
	if err != nil {
		return err
	}

	extractor, err := colour.NewExtractor(cfg.Algorithm)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	logger := o.log()
	loader := image.NewSmartLoader()
	loader.AllowPrivateHosts = o.allowPrivate
	if o.cache {
		c, err := imagecache.New("")
		if err != nil {
			return err
		}
		loader.Cache = c
		logger.Debug("using image cache", "dir", c.Dir)
	}

	results := make([]sourceReport, 0, len(paths))
	for _, p := range paths {
		report, err := o.extractOne(cmd.Context(), loader, extractor, p)
		if err != nil {
			if len(paths) == 1 {
				return err
			}
			logger.Warn("skipping image", "path", p, "error", err)
			continue
		}
		results = append(results, sourceReport{Source: p, Report: report})
	}
	if len(results) == 0 {
		return fmt.Errorf("no images in %s could be processed", target)
	}

	preview := o.preview && o.output == "" && terminalOutput(cmd.OutOrStdout())
	if o.preview && !preview {
		logger.Debug("colour preview disabled, output is not a terminal")
	}

	out, err := renderReports(results, o.format, preview)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, o.output, out); err != nil {
		return err
	}
	if o.output != "" {
		logger.Info("wrote colour report", "path", o.output, "images", len(results))
	}
	return nil
}

func (o *extractOptions) extractOne(ctx context.Context, loader image.Loader, extractor colour.Extractor, path string) (*colour.Report, error) {
	logger := o.log()
	logger.Debug("loading image", "path", path)

	img, err := loader.Load(ctx, path)
	if err != nil {
		return nil, describeError(path, err)
	}

	b := img.Bounds()
	img = image.Downsample(img, o.maxDimension)
	if nb := img.Bounds(); nb != b {
		logger.Debug("downsampled image", "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "to", fmt.Sprintf("%dx%d", nb.Dx(), nb.Dy()))
	}

	report, err := extractor.Extract(img, o.colours)
	if err != nil {
		return nil, describeError(path, err)
	}
	logger.Debug("extracted colours", "path", path, "algorithm", report.Algorithm, "colours", report.Len(), "pixels", report.Total)
	return report, nil
}

// describeError turns extraction failures into messages a user can act on.
// A DecodeError already reads "could not load image <source>".
func describeError(source string, err error) error {
	switch {
	case colour.IsDecodeError(err):
		return err
	case errors.Is(err, colour.ErrEmptyResult), errors.Is(err, colour.ErrInvalidImage):
		return fmt.Errorf("%s: %w", source, err)
	default:
		return err
	}
}

// terminalOutput reports whether w is a terminal that accepts colour escapes.
func terminalOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && colour.SupportsANSIColours(f)
}

func renderReports(results []sourceReport, format string, preview bool) (string, error) {
	if format == "json" {
		var (
			data []byte
			err  error
		)
		if len(results) == 1 {
			data, err = results[0].ToJSON()
		} else {
			data, err = json.MarshalIndent(results, "", "  ")
		}
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	}

	var sb strings.Builder
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%s:\n", r.Source)
		}
		sb.WriteString(formatReport(r.Report, format, preview))
	}
	return sb.String(), nil
}

// formatReport renders one report in a line-oriented format.
func formatReport(report *colour.Report, format string, preview bool) string {
	if format == "table" {
		return formatTable(report, preview)
	}

	var sb strings.Builder
	for _, e := range report.All() {
		var value string
		switch format {
		case "rgb":
			value = e.RGB
		case "hsl":
			value = e.HSL
		default:
			value = e.Hex
		}
		if preview {
			sb.WriteString(colour.ColourPreview(e.Value(), 4) + "  ")
		}
		sb.WriteString(value + "\n")
	}
	return sb.String()
}

func formatTable(report *colour.Report, preview bool) string {
	headers := []string{"#", "HEX", "RGB", "HSL", "PIXELS", "SHARE"}
	if preview {
		headers = append([]string{""}, headers...)
	}
	table := NewTable(headers...)

	offset := len(headers) - 6
	table.SetAlign(offset, AlignRight)
	table.SetAlign(offset+4, AlignRight)
	table.SetAlign(offset+5, AlignRight)

	for i, e := range report.All() {
		share := 0.0
		if report.Total > 0 {
			share = float64(e.Count) * 100 / float64(report.Total)
		}
		row := []string{
			strconv.Itoa(i + 1),
			e.Hex,
			e.RGB,
			e.HSL,
			strconv.Itoa(e.Count),
			fmt.Sprintf("%.1f%%", share),
		}
		if preview {
			row = append([]string{colour.ColourPreview(e.Value(), 4)}, row...)
		}
		table.AddRow(row...)
	}
	return table.Render()
}
