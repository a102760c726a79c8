package graph

import (
	"depscan/internal/core/errors"
	"sort"
)

// ImpactReport lists the modules affected by a change to Target.
type ImpactReport struct {
	Target              string
	TargetFile          string
	DirectImporters     []string
	TransitiveImporters []string // Importers reached only through other importers
	ExportedSymbols     []string // Public top-level names other modules may rely on
}

// AnalyzeImpact walks reverse edges from path.
func (g *Graph) AnalyzeImpact(path string) (ImpactReport, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[path]
	if !ok {
		return ImpactReport{}, errors.AddContext(errors.New(errors.CodeNotFound, "impact target not found"), errors.CtxModule, path)
	}

	report := ImpactReport{Target: path, TargetFile: node.FilePath}

	direct := make([]string, 0, len(g.importedBy[path]))
	for importer := range g.importedBy[path] {
		if importer != path {
			direct = append(direct, importer)
		}
	}
	sort.Strings(direct)
	report.DirectImporters = direct

	seen := map[string]bool{path: true}
	for _, mod := range direct {
		seen[mod] = true
	}
	queue := append([]string(nil), direct...)

	transitive := make([]string, 0)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for next := range g.importedBy[curr] {
			if seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
			transitive = append(transitive, next)
		}
	}
	sort.Strings(transitive)
	report.TransitiveImporters = transitive

	if len(direct) > 0 {
		symbols := make([]string, 0, len(node.Definitions))
		for _, def := range node.Definitions {
			if def.Exported {
				symbols = append(symbols, def.Name)
			}
		}
		sort.Strings(symbols)
		report.ExportedSymbols = symbols
	}

	return report, nil
}
