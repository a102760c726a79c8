// # internal/ui/report/dot.go
package report

import (
	"depscan/internal/core/app"
	"depscan/internal/engine/graph"
	"depscan/internal/shared/util"
	"fmt"
	"strings"
)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// DOTGenerator renders the import graph as Graphviz DOT. Node and edge styling
// comes from the report's node flags; nothing is re-analyzed.
type DOTGenerator struct {
	report *app.Report

	// IncludeExternal adds one node per external top-level package.
	IncludeExternal bool
}

func NewDOTGenerator(r *app.Report) *DOTGenerator {
	return &DOTGenerator{report: r, IncludeExternal: true}
}

func (d *DOTGenerator) Generate() (string, error) {
	if d.report == nil || d.report.Graph == nil {
		return "", fmt.Errorf("dot: report has no graph")
	}
	g := d.report.Graph

	var buf strings.Builder
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  overlap=false;\n\n")

	// Cycle edges are the consecutive pairs of each reported cycle path.
	cycleEdges := make(map[[2]string]bool)
	for _, c := range d.report.Cycles {
		for i := 0; i+1 < len(c.Path); i++ {
			cycleEdges[[2]string{c.Path[i], c.Path[i+1]}] = true
		}
	}

	buf.WriteString("  subgraph cluster_project {\n")
	buf.WriteString("    label=\"Project Modules\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")
	for _, path := range g.Nodes() {
		node, _ := g.Node(path)
		label := dotEscaper.Replace(path)
		if node != nil {
			label = fmt.Sprintf("%s\\n(%d lines)", dotEscaper.Replace(path), node.LineCount)
		}
		buf.WriteString(fmt.Sprintf("    %s [label=\"%s\"%s];\n", quote(path), label, nodeAttrs(d.report.Flags(path))))
	}
	buf.WriteString("  }\n\n")

	if d.IncludeExternal {
		external := g.External()
		if len(external) > 0 {
			buf.WriteString("  // External packages\n")
			buf.WriteString("  node [fillcolor=\"gainsboro\", style=\"rounded,filled\", color=\"grey\"];\n")
			for _, name := range util.SortedStringKeys(external) {
				buf.WriteString(fmt.Sprintf("  %s [label=\"%s\\n(%d imports)\"];\n", quote("ext:"+name), dotEscaper.Replace(name), external[name]))
			}
			buf.WriteString("\n")
		}
	}

	for _, e := range g.Edges() {
		switch {
		case cycleEdges[[2]string{e.From, e.To}]:
			buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", quote(e.From), quote(e.To)))
		case conditionalOnly(e.Records):
			buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"forestgreen\", style=dashed];\n", quote(e.From), quote(e.To)))
		default:
			buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"forestgreen\", penwidth=1.8];\n", quote(e.From), quote(e.To)))
		}
	}

	buf.WriteString("\n  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Legend\";\n")
	buf.WriteString("    style=dashed;\n")
	buf.WriteString("    legend_module [label=\"Module\", fillcolor=\"white\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_cycle [label=\"Circular Import\", fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\"];\n")
	buf.WriteString("    legend_oversized [label=\"Oversized\", color=\"darkorange\", penwidth=2.0];\n")
	buf.WriteString("    legend_dead [label=\"Unreachable\", fontcolor=\"grey40\", style=\"rounded,filled,dashed\"];\n")
	if d.IncludeExternal {
		buf.WriteString("    legend_external [label=\"External Package\", fillcolor=\"gainsboro\", style=\"rounded,filled\"];\n")
	}
	buf.WriteString("  }\n")
	buf.WriteString("}\n")

	return buf.String(), nil
}

func nodeAttrs(f app.NodeFlags) string {
	var attrs []string
	switch {
	case f.CycleInvolved:
		attrs = append(attrs, `fillcolor="mistyrose"`, `color="red"`, `penwidth=2.0`)
	case f.Oversized:
		attrs = append(attrs, `color="darkorange"`, `penwidth=2.0`)
	default:
		attrs = append(attrs, `color="darkslategrey"`)
	}
	if f.CycleInvolved && f.Oversized {
		attrs = append(attrs, `peripheries=2`)
	}
	if f.Dead {
		attrs = append(attrs, `fontcolor="grey40"`, `style="rounded,filled,dashed"`)
	}
	return ", " + strings.Join(attrs, ", ")
}

// conditionalOnly reports whether every import behind an edge sits in a guarded block.
func conditionalOnly(records []graph.ImportRecord) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if !r.Conditional {
			return false
		}
	}
	return true
}
