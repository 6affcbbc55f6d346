package neato

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/dagedit/pkg/layout"
)

// ToDOT converts a request to a DOT digraph for neato. Positions are
// written in points with the y axis flipped.
func ToDOT(req layout.Request, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	fmt.Fprintf(&buf, "  overlap=%s;\n", quote(opts.Overlap))
	if opts.Hierarchical {
		buf.WriteString("  mode=hier;\n")
	}
	fmt.Fprintf(&buf, "  node [shape=box, width=%s, height=%s];\n", num(opts.NodeWidth/72), num(opts.NodeHeight/72))
	buf.WriteString("\n")

	for _, rn := range req.Nodes {
		pos := num(rn.Position.X) + "," + num(-rn.Position.Y)
		if rn.Pinned {
			fmt.Fprintf(&buf, "  %s [pos=%s, pin=true];\n", quote(rn.ID), quote(pos+"!"))
		} else {
			fmt.Fprintf(&buf, "  %s [pos=%s];\n", quote(rn.ID), quote(pos))
		}
	}

	buf.WriteString("\n")
	for _, e := range req.Edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.Parent), quote(e.Child))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}

func num(f float64) string { return fmt.Sprintf("%.2f", f) }
