// Package schematic draws an assembled lens chain as a Graphviz diagram.
//
// Each transfocator becomes a cluster of lens nodes, laid out left to right
// in beam order. Edges carry the free distance between consecutive lenses.
//
//	dot := schematic.ToDOT(chain, schematic.Options{Detailed: true})
//	svg, err := schematic.RenderSVG(ctx, dot)
package schematic

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/transfocator/pkg/geometry"
)

// Options configures the diagram.
type Options struct {
	// Detailed adds material, radius and housing to each lens label.
	Detailed bool

	// Focus, when positive and finite, adds a focus node that far
	// downstream of the last lens.
	Focus float64
}

// ToDOT converts a chain to Graphviz DOT.
func ToDOT(c *geometry.Chain, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph beamline {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	fmt.Fprintf(&buf, "  source [shape=circle, fillcolor=gold, label=%q];\n", fmt.Sprintf("source\n%g eV", c.Energy))
	buf.WriteString("\n")

	spans := map[string]geometry.Span{}
	for _, s := range c.Spans {
		spans[s.TF] = s
	}

	for i, tf := range groupByTF(c.Units) {
		s := spans[tf.name]
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("%s (%s) %.4f to %.4f m", tf.name, s.Kind, s.Start, s.End))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, u := range tf.units {
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(u), strings.Join(fmtAttrs(u, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	prev := "source"
	for _, u := range c.Units {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", prev, nodeID(u), fmtDistance(u.Distance))
		prev = nodeID(u)
	}
	if f := opts.Focus; f > 0 && !math.IsInf(f, 0) && len(c.Units) > 0 {
		buf.WriteString("  focus [shape=doublecircle, fillcolor=lightblue, label=\"focus\"];\n")
		fmt.Fprintf(&buf, "  %q -> focus [style=dashed, label=%q];\n", prev, fmtDistance(f))
	}

	buf.WriteString("}\n")
	return buf.String()
}

type tfUnits struct {
	name  string
	units []geometry.LensUnit
}

func groupByTF(units []geometry.LensUnit) []tfUnits {
	var out []tfUnits
	for _, u := range units {
		if len(out) == 0 || out[len(out)-1].name != u.TF {
			out = append(out, tfUnits{name: u.TF})
		}
		last := &out[len(out)-1]
		last.units = append(last.units, u)
	}
	return out
}

func nodeID(u geometry.LensUnit) string {
	return fmt.Sprintf("%s/%d", u.TF, u.InTF)
}

func fmtLabel(u geometry.LensUnit, detailed bool) string {
	label := fmt.Sprintf("%s\n%.4f m", u.Preset, u.Position)
	if !detailed {
		return label
	}
	return label + fmt.Sprintf("\n%s, R=%.0f um\nblock %d slot %d", u.Material, u.R*1e6, u.Block, u.Slot)
}

func fmtAttrs(u geometry.LensUnit, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(u, detailed))}
	if u.LastInBlock && !u.LastInTF {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func fmtDistance(d float64) string {
	if d < 1 {
		return fmt.Sprintf("%.1f mm", d*1e3)
	}
	return fmt.Sprintf("%.3f m", d)
}
