// # internal/engine/graph/reach.go
package graph

import (
	"sort"
)

// Reachability is the live/dead partition of the graph for a set of entry points.
type Reachability struct {
	EntryPoints []string // Entry points that exist in the graph
	Unknown     []string // Requested entry points with no matching node
	Live        []string
	Dead        []string
}

// EntryMatcher decides whether a node is a program root.
type EntryMatcher func(n *Node) bool

// InferEntryPoints returns the sorted nodes accepted by match.
func (g *Graph) InferEntryPoints(match EntryMatcher) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0)
	for _, path := range g.sortedNodesLocked() {
		if match(g.nodes[path]) {
			out = append(out, path)
		}
	}
	return out
}

// FindDeadModules runs one breadth-first traversal seeded with every entry point at
// once. Nodes never reached are dead, including nodes only reachable from other dead
// nodes. With no valid entry points every node is dead.
func (g *Graph) FindDeadModules(entryPoints []string) Reachability {
	nodes, adj := g.adjacency()
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n] = true
	}

	res := Reachability{
		EntryPoints: make([]string, 0),
		Unknown:     make([]string, 0),
		Live:        make([]string, 0),
		Dead:        make([]string, 0),
	}

	live := make(map[string]bool, len(nodes))
	queue := make([]string, 0, len(entryPoints))
	for _, ep := range dedupeSorted(entryPoints) {
		if !known[ep] {
			res.Unknown = append(res.Unknown, ep)
			continue
		}
		res.EntryPoints = append(res.EntryPoints, ep)
		live[ep] = true
		queue = append(queue, ep)
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adj[curr] {
			if live[next] {
				continue
			}
			live[next] = true
			queue = append(queue, next)
		}
	}

	for _, n := range nodes {
		if live[n] {
			res.Live = append(res.Live, n)
		} else {
			res.Dead = append(res.Dead, n)
		}
	}
	return res
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
