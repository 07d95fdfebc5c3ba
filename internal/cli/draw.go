package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fzabel/revsynth/pkg/circuit"
	"github.com/fzabel/revsynth/pkg/diagram"
	"github.com/fzabel/revsynth/pkg/errors"
	pkgio "github.com/fzabel/revsynth/pkg/io"
)

// drawFormats is the set of supported diagram formats.
var drawFormats = map[string]bool{
	"ascii": true,
	"full":  true,
	"dot":   true,
	"svg":   true,
	"png":   true,
}

// validateDrawFormat checks that a diagram format is valid.
func validateDrawFormat(format string) error {
	if !drawFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %s (must be 'ascii', 'full', 'dot', 'svg', or 'png')", format)
	}
	return nil
}

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	format string // diagram format
	output string // output file path (stdout for text formats if empty)
	index  int    // circuit index for batch files (-1 = single-circuit file)
}

// drawCommand creates the draw command for rendering circuit diagrams.
func (c *CLI) drawCommand() *cobra.Command {
	opts := drawOpts{format: "ascii", index: -1}

	cmd := &cobra.Command{
		Use:   "draw <circuit.json>",
		Short: "Render a circuit diagram",
		Long: `Render a circuit as a diagram.

Text formats (ascii, full, dot) go to stdout unless --output is given.
Image formats (svg, png) need Graphviz layout and default to writing next
to the input file. Use --index to pick a circuit out of a batch file.

Examples:
  revsynth draw circuit.json                      # compact gate listing
  revsynth draw circuit.json -f full              # box-drawing diagram
  revsynth draw identities_W3_L6_x.json --index 0 # first circuit of a batch
  revsynth draw circuit.json -f svg               # circuit.svg via Graphviz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDraw(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "diagram format: ascii (default), full, dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout for text formats if empty)")
	cmd.Flags().IntVar(&opts.index, "index", opts.index, "circuit index in a batch file (-1 = single-circuit file)")

	return cmd
}

// runDraw loads the circuit and renders it in the selected format.
func (c *CLI) runDraw(ctx context.Context, input string, opts drawOpts) error {
	if err := validateDrawFormat(opts.format); err != nil {
		return err
	}

	circ, err := loadCircuit(input, opts.index)
	if err != nil {
		return err
	}

	switch opts.format {
	case "ascii":
		return writeText(diagram.Draw(circ, diagram.Options{}), opts.output)
	case "full":
		return writeText(diagram.Draw(circ, diagram.Options{Full: true}), opts.output)
	case "dot":
		return writeText(diagram.ToDOT(circ), opts.output)
	}

	// Image formats always land in a file.
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}

	dot := diagram.ToDOT(circ)
	var data []byte
	if opts.format == "svg" {
		data, err = diagram.RenderSVG(dot)
	} else {
		data, err = diagram.RenderPNG(dot)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.format, err)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Rendered %s diagram", opts.format)
	printFile(output)
	return nil
}

// loadCircuit reads a circuit from a single-circuit file, or from a batch
// file when index is non-negative.
func loadCircuit(path string, index int) (*circuit.Circuit, error) {
	if index >= 0 {
		batch, err := pkgio.ImportBatch(path)
		if err != nil {
			return nil, err
		}
		if index >= len(batch.Circuits) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"batch has %d circuits, index %d out of range", len(batch.Circuits), index)
		}
		return batch.Circuits[index], nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pkgio.ReadCircuit(f)
}

// writeText writes a rendered text diagram to path, or stdout when empty.
func writeText(s, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = fmt.Fprintln(out, s)
	return err
}
