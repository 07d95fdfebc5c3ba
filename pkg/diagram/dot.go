package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// ToDOT converts a circuit to Graphviz DOT format. Gates appear as boxes
// in application order, connected left to right. The resulting DOT string
// can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(c *circuit.Circuit) string {
	var buf bytes.Buffer
	buf.WriteString("digraph circuit {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  in [label=\"%d wires\", shape=plaintext, style=\"\"];\n", c.Width())
	for i, g := range c.Gates() {
		label := fmt.Sprintf("G%d\ntarget %d\n+ctrl %d\n-ctrl %d", i, g.Target, g.Control1, g.Control2)
		fmt.Fprintf(&buf, "  g%d [label=%q];\n", i, label)
	}

	buf.WriteString("\n")
	prev := "in"
	for i := 0; i < c.Len(); i++ {
		fmt.Fprintf(&buf, "  %s -> g%d;\n", prev, i)
		prev = fmt.Sprintf("g%d", i)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
