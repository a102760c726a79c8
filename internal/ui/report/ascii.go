package report

import (
	"depscan/internal/core/app"
	"fmt"
	"strings"
)

const DefaultASCIIMaxDepth = 3

// ASCIIGenerator renders the import graph as an indented tree rooted at the entry
// points. A module is expanded once; later occurrences are marked instead.
type ASCIIGenerator struct {
	report   *app.Report
	maxDepth int
}

func NewASCIIGenerator(r *app.Report, maxDepth int) *ASCIIGenerator {
	if maxDepth <= 0 {
		maxDepth = DefaultASCIIMaxDepth
	}
	return &ASCIIGenerator{report: r, maxDepth: maxDepth}
}

func (a *ASCIIGenerator) Generate() (string, error) {
	if a.report == nil || a.report.Graph == nil {
		return "", fmt.Errorf("ascii: report has no graph")
	}

	roots := a.roots()
	if len(roots) == 0 {
		return "(no modules)\n", nil
	}

	var buf strings.Builder
	expanded := make(map[string]bool)
	for _, root := range roots {
		buf.WriteString(root)
		buf.WriteString(a.tags(root))
		buf.WriteString("\n")
		expanded[root] = true
		a.children(&buf, root, "", 1, expanded)
	}
	return buf.String(), nil
}

// roots prefers the reachability entry points, then modules nothing imports. A
// graph made only of cycles falls back to every module.
func (a *ASCIIGenerator) roots() []string {
	g := a.report.Graph
	var roots []string
	for _, entry := range a.report.Reachability.EntryPoints {
		if g.Contains(entry) {
			roots = append(roots, entry)
		}
	}
	if len(roots) > 0 {
		return roots
	}
	for _, path := range g.Nodes() {
		if len(g.Incoming(path)) == 0 {
			roots = append(roots, path)
		}
	}
	if len(roots) > 0 {
		return roots
	}
	return g.Nodes()
}

func (a *ASCIIGenerator) children(buf *strings.Builder, path, prefix string, depth int, expanded map[string]bool) {
	deps := a.report.Graph.Outgoing(path)
	if len(deps) == 0 {
		return
	}
	if depth > a.maxDepth {
		buf.WriteString(prefix + "└── ...\n")
		return
	}

	for i, dep := range deps {
		last := i == len(deps)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}

		buf.WriteString(prefix + branch + dep + a.tags(dep))
		if expanded[dep] {
			if len(a.report.Graph.Outgoing(dep)) > 0 {
				buf.WriteString(" (see above)")
			}
			buf.WriteString("\n")
			continue
		}
		buf.WriteString("\n")
		expanded[dep] = true
		a.children(buf, dep, prefix+indent, depth+1, expanded)
	}
}

func (a *ASCIIGenerator) tags(path string) string {
	f := a.report.Flags(path)
	var tags []string
	if f.CycleInvolved {
		tags = append(tags, "cycle")
	}
	if f.Oversized {
		tags = append(tags, "oversized")
	}
	if f.Dead {
		tags = append(tags, "dead")
	}
	if f.DynamicImports {
		tags = append(tags, "dynamic")
	}
	if len(tags) == 0 {
		return ""
	}
	return " [" + strings.Join(tags, ", ") + "]"
}
