package graph

import (
	"sort"
)

type ModuleMetrics struct {
	Depth           int // Longest import chain below this module, with each cycle collapsed to one step
	FanIn           int
	FanOut          int
	ImportanceScore float64
}

// ComputeModuleMetrics derives fan-in, fan-out and depth for every node.
// Depth is measured over the condensation of strongly connected components.
func (g *Graph) ComputeModuleMetrics() map[string]ModuleMetrics {
	moduleNames, adjacency := g.adjacency()

	fanIn := make(map[string]int, len(moduleNames))
	fanOut := make(map[string]int, len(moduleNames))
	for _, from := range moduleNames {
		fanOut[from] = len(adjacency[from])
		for _, to := range adjacency[from] {
			fanIn[to]++
		}
	}

	componentOf, components := stronglyConnectedComponents(moduleNames, adjacency)
	componentEdges := make(map[int]map[int]bool, len(components))
	for _, from := range moduleNames {
		fromComp := componentOf[from]
		for _, to := range adjacency[from] {
			toComp := componentOf[to]
			if fromComp == toComp {
				continue
			}
			if componentEdges[fromComp] == nil {
				componentEdges[fromComp] = make(map[int]bool)
			}
			componentEdges[fromComp][toComp] = true
		}
	}

	// Tarjan emits components in reverse topological order, so every successor
	// of a component already has its depth when the component is reached.
	depthByComp := make([]int, len(components))
	for comp := range components {
		maxDepth := 0
		for next := range componentEdges[comp] {
			if candidate := 1 + depthByComp[next]; candidate > maxDepth {
				maxDepth = candidate
			}
		}
		depthByComp[comp] = maxDepth
	}

	lineCounts := g.lineCounts()
	metrics := make(map[string]ModuleMetrics, len(moduleNames))
	for _, name := range moduleNames {
		fi := fanIn[name]
		fo := fanOut[name]
		metrics[name] = ModuleMetrics{
			Depth:           depthByComp[componentOf[name]],
			FanIn:           fi,
			FanOut:          fo,
			ImportanceScore: CalculateImportanceScore(fi, fo, lineCounts[name], name),
		}
	}

	return metrics
}

// RankedModule pairs a module with its metrics.
type RankedModule struct {
	Path    string
	Metrics ModuleMetrics
}

// TopImported returns up to n modules with the highest fan-in, ties broken by path.
func TopImported(metrics map[string]ModuleMetrics, n int) []RankedModule {
	return topBy(metrics, n, func(a, b ModuleMetrics) bool { return a.FanIn > b.FanIn }, func(m ModuleMetrics) bool { return m.FanIn > 0 })
}

// TopImportance returns up to n modules with the highest importance score.
func TopImportance(metrics map[string]ModuleMetrics, n int) []RankedModule {
	return topBy(metrics, n, func(a, b ModuleMetrics) bool { return a.ImportanceScore > b.ImportanceScore }, func(m ModuleMetrics) bool { return m.ImportanceScore > 0 })
}

func topBy(metrics map[string]ModuleMetrics, n int, better func(a, b ModuleMetrics) bool, keep func(ModuleMetrics) bool) []RankedModule {
	if n <= 0 {
		return nil
	}
	ranked := make([]RankedModule, 0, len(metrics))
	for path, m := range metrics {
		if keep(m) {
			ranked = append(ranked, RankedModule{Path: path, Metrics: m})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if better(ranked[i].Metrics, ranked[j].Metrics) {
			return true
		}
		if better(ranked[j].Metrics, ranked[i].Metrics) {
			return false
		}
		return ranked[i].Path < ranked[j].Path
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (g *Graph) lineCounts() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]int, len(g.nodes))
	for path, n := range g.nodes {
		out[path] = n.LineCount
	}
	return out
}
