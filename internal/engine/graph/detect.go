// # internal/engine/graph/detect.go
package graph

import (
	"sort"
)

// Cycle is one representative elementary cycle of a strongly connected component.
type Cycle struct {
	Path    []string // Closed walk, Path[0] == Path[len(Path)-1]
	Members []string // Sorted members of the component
}

// Anchor is the lexicographically smallest member, where Path starts.
func (c Cycle) Anchor() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[0]
}

// DetectCycles reports one cycle per cycle-involved component: components with more
// than one node, or a single node importing itself. Components holding several
// elementary cycles are still reported once. Output is sorted by anchor.
func (g *Graph) DetectCycles() []Cycle {
	nodes, adj := g.adjacency()
	_, components := stronglyConnectedComponents(nodes, adj)

	cycles := make([]Cycle, 0)
	for _, comp := range components {
		if len(comp) == 1 && !hasEdge(adj, comp[0], comp[0]) {
			continue
		}
		cycles = append(cycles, Cycle{
			Path:    cycleThrough(comp, adj),
			Members: comp,
		})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Anchor() < cycles[j].Anchor()
	})
	return cycles
}

// CycleMembers returns the set of nodes involved in any of cycles.
func CycleMembers(cycles []Cycle) map[string]bool {
	out := make(map[string]bool)
	for _, c := range cycles {
		for _, m := range c.Members {
			out[m] = true
		}
	}
	return out
}

// cycleThrough walks depth-first from the component's smallest member, staying
// inside the component and taking neighbours in sorted order, until an edge leads
// back to the anchor. comp must be sorted.
func cycleThrough(comp []string, adj map[string][]string) []string {
	anchor := comp[0]
	inComp := make(map[string]bool, len(comp))
	for _, n := range comp {
		inComp[n] = true
	}

	type frame struct {
		node string
		next int
	}
	stack := []frame{{node: anchor}}
	visited := map[string]bool{anchor: true}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := adj[top.node]
		if top.next >= len(neighbors) {
			stack = stack[:len(stack)-1]
			continue
		}
		w := neighbors[top.next]
		top.next++

		if !inComp[w] {
			continue
		}
		if w == anchor {
			path := make([]string, 0, len(stack)+1)
			for _, f := range stack {
				path = append(path, f.node)
			}
			return append(path, anchor)
		}
		if !visited[w] {
			visited[w] = true
			stack = append(stack, frame{node: w})
		}
	}
	// Unreachable for a genuine component.
	return []string{anchor, anchor}
}

func hasEdge(adj map[string][]string, from, to string) bool {
	targets := adj[from]
	i := sort.SearchStrings(targets, to)
	return i < len(targets) && targets[i] == to
}

// stronglyConnectedComponents is Tarjan's algorithm with an explicit stack, so deep
// import chains cannot exhaust the goroutine stack. Components come out sorted.
func stronglyConnectedComponents(nodes []string, adjacency map[string][]string) (map[string]int, [][]string) {
	index := 0
	stack := make([]string, 0, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	indexByNode := make(map[string]int, len(nodes))
	lowLink := make(map[string]int, len(nodes))
	componentOf := make(map[string]int, len(nodes))
	components := make([][]string, 0)

	type frame struct {
		node string
		next int
	}

	for _, root := range nodes {
		if _, seen := indexByNode[root]; seen {
			continue
		}

		work := []frame{{node: root}}
		indexByNode[root] = index
		lowLink[root] = index
		index++
		stack = append(stack, root)
		onStack[root] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			v := top.node

			if top.next < len(adjacency[v]) {
				w := adjacency[v][top.next]
				top.next++
				if _, seen := indexByNode[w]; !seen {
					indexByNode[w] = index
					lowLink[w] = index
					index++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, frame{node: w})
				} else if onStack[w] && indexByNode[w] < lowLink[v] {
					lowLink[v] = indexByNode[w]
				}
				continue
			}

			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].node
				if lowLink[v] < lowLink[parent] {
					lowLink[parent] = lowLink[v]
				}
			}

			if lowLink[v] != indexByNode[v] {
				continue
			}

			component := make([]string, 0)
			for {
				last := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[last] = false
				component = append(component, last)
				if last == v {
					break
				}
			}
			sort.Strings(component)
			compID := len(components)
			components = append(components, component)
			for _, n := range component {
				componentOf[n] = compID
			}
		}
	}

	return componentOf, components
}

// FindImportChain returns a shortest import path from one module to another,
// preferring lexicographically smaller neighbours on ties.
func (g *Graph) FindImportChain(from, to string) ([]string, bool) {
	nodes, adj := g.adjacency()
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	if !known[from] || !known[to] {
		return nil, false
	}
	if from == to {
		return []string{from}, true
	}

	queue := []string{from}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range adj[curr] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr

			if next == to {
				path := []string{to}
				for node := to; node != from; {
					p := prev[node]
					path = append(path, p)
					node = p
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, true
			}

			queue = append(queue, next)
		}
	}

	return nil, false
}
