package diagram

import (
	"fmt"
	"strings"

	"github.com/fzabel/revsynth/pkg/circuit"
)

// Options configures ASCII circuit drawing.
type Options struct {
	// Full draws box-drawing art with one five-character column per gate.
	// When false, Draw produces the compact gate listing with a
	// one-character-per-gate wire diagram.
	Full bool
}

// Draw returns an ASCII rendering of the circuit.
func Draw(c *circuit.Circuit, opts Options) string {
	if c.Len() == 0 {
		return fmt.Sprintf("Empty circuit (%d wires)", c.Width())
	}
	if opts.Full {
		return drawFull(c)
	}
	return drawCompact(c)
}

func drawCompact(c *circuit.Circuit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Circuit: %d gates, %d wires\n\n", c.Len(), c.Width())

	for i, g := range c.Gates() {
		fmt.Fprintf(&b, "  [%d] target=%d, ctrl1=%d, ctrl2=%d\n", i, g.Target, g.Control1, g.Control2)
	}

	b.WriteString("\nWire diagram:\n")
	for wire := 0; wire < c.Width(); wire++ {
		fmt.Fprintf(&b, "  w%d: ", wire)
		for _, g := range c.Gates() {
			b.WriteString(wireMark(g, wire))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// wireMark picks a gate's mark on a wire. Target wins over controls for
// same-line gate sets, matching the cell choice in drawFull.
func wireMark(g circuit.Gate, wire int) string {
	switch {
	case g.Target == wire:
		return "T"
	case g.Control1 == wire:
		return "+"
	case g.Control2 == wire:
		return "-"
	}
	return "─"
}

func drawFull(c *circuit.Circuit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Circuit: %d gates, %d wires\n", c.Len(), c.Width())
	b.WriteString(strings.Repeat("=", 40))
	b.WriteByte('\n')

	b.WriteString("     ")
	for i := 0; i < c.Len(); i++ {
		fmt.Fprintf(&b, " G%-3d", i)
	}
	b.WriteString("\n\n")

	for wire := 0; wire < c.Width(); wire++ {
		fmt.Fprintf(&b, "w%d ──", wire)
		for _, g := range c.Gates() {
			b.WriteString(wireCell(g, wire))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func wireCell(g circuit.Gate, wire int) string {
	switch {
	case g.Target == wire:
		return "─[X]─"
	case g.Control1 == wire:
		return "──●──"
	case g.Control2 == wire:
		return "──○──"
	}
	return "─────"
}
