// Package diagram renders circuits as ASCII art and Graphviz diagrams.
//
// # Overview
//
// This package turns a circuit into human-readable form. The ASCII
// renderers produce terminal output for quick inspection; the DOT
// renderer produces Graphviz source for documentation and debugging.
//
// # Usage
//
// Draw a circuit for the terminal:
//
//	fmt.Println(diagram.Draw(c, diagram.Options{}))
//	fmt.Println(diagram.Draw(c, diagram.Options{Full: true}))
//
// Convert to DOT, then render to SVG or PNG:
//
//	dot := diagram.ToDOT(c)
//	svg, err := diagram.RenderSVG(dot)
//	png, err := diagram.RenderPNG(dot)
//
// # Formats
//
// The compact format lists every gate with its line assignments and ends
// with a wire diagram using one character per gate: T marks the target
// line, + the positive control, - the negated control, and a plain wire
// character marks lines the gate does not touch.
//
// The full format draws box-drawing art with a five-character column per
// gate: [X] on the target wire, a filled dot on the positive control, an
// open dot on the negated control.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering; no external Graphviz installation is required.
package diagram
