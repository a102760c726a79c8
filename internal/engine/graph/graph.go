// # internal/engine/graph/graph.go
package graph

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/parser"
	"depscan/internal/shared/observability"
	"depscan/internal/shared/util"
	"sync"
)

// Graph is a directed import graph keyed by canonical module path.
// It is built by a single owner and becomes read-only after Freeze.
type Graph struct {
	mu sync.RWMutex

	nodes map[string]*Node

	// Relationships
	imports    map[string]map[string]*Edge // from -> to -> edge
	importedBy map[string]map[string]bool  // to -> from

	external   map[string]int  // top-level external name -> import count
	stdlib     map[string]bool // external names from the standard library
	unresolved map[string]int  // project import spec matching no module -> count
	frozen     bool
}

// Node is one project module.
type Node struct {
	Path         string // Canonical path, e.g. "pkg/mod" or "pkg/__init__"
	FilePath     string // Discovered file path, relative to the project root
	LineCount    int
	Classes      []string
	Functions    []string
	Imports      []parser.Import
	Definitions  []parser.Definition
	HasMainGuard bool
}

// ImportRecord is one import statement contributing to an edge.
type ImportRecord struct {
	Line        int
	Raw         string
	Conditional bool
}

type Edge struct {
	From    string
	To      string
	Records []ImportRecord
}

// NodeFromFile builds node metadata from an extracted file.
func NodeFromFile(path string, file *parser.File) Node {
	n := Node{
		Path:         path,
		FilePath:     file.Path,
		LineCount:    file.LineCount,
		Imports:      append([]parser.Import(nil), file.Imports...),
		Definitions:  append([]parser.Definition(nil), file.Definitions...),
		HasMainGuard: file.HasMainGuard,
	}
	for _, def := range file.Definitions {
		if def.Kind == parser.KindClass {
			n.Classes = append(n.Classes, def.Name)
		} else {
			n.Functions = append(n.Functions, def.Name)
		}
	}
	return n
}

func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		imports:    make(map[string]map[string]*Edge),
		importedBy: make(map[string]map[string]bool),
		external:   make(map[string]int),
		stdlib:     make(map[string]bool),
		unresolved: make(map[string]int),
	}
}

// AddNode registers path. Adding an existing path is a no-op; the first metadata wins.
func (g *Graph) AddNode(path string, meta Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return errors.AddContext(errors.New(errors.CodeConflict, "graph is frozen"), errors.CtxModule, path)
	}
	if path == "" {
		return errors.New(errors.CodeValidationError, "node path is empty")
	}
	if _, exists := g.nodes[path]; exists {
		return nil
	}
	meta.Path = path
	g.nodes[path] = cloneNode(&meta)
	return nil
}

// AddEdge records that from imports to. Repeated imports between the same pair
// merge into one edge carrying every contributing record.
func (g *Graph) AddEdge(from, to string, rec ImportRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return errors.AddContext(errors.New(errors.CodeConflict, "graph is frozen"), errors.CtxModule, from)
	}
	if _, ok := g.nodes[from]; !ok {
		return errors.AddContext(errors.New(errors.CodeNotFound, "edge source is not a node"), errors.CtxModule, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return errors.AddContext(errors.New(errors.CodeNotFound, "edge target is not a node"), errors.CtxModule, to)
	}

	if g.imports[from] == nil {
		g.imports[from] = make(map[string]*Edge)
	}
	edge, ok := g.imports[from][to]
	if !ok {
		edge = &Edge{From: from, To: to}
		g.imports[from][to] = edge
	}
	edge.Records = append(edge.Records, rec)

	if g.importedBy[to] == nil {
		g.importedBy[to] = make(map[string]bool)
	}
	g.importedBy[to][from] = true
	return nil
}

// RecordExternal tallies an import that resolved outside the project.
func (g *Graph) RecordExternal(name string, stdlib bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return errors.New(errors.CodeConflict, "graph is frozen")
	}
	g.external[name]++
	origin := "third_party"
	if stdlib {
		g.stdlib[name] = true
		origin = "stdlib"
	}
	observability.ExternalImportsTotal.WithLabelValues(origin).Inc()
	return nil
}

// RecordUnresolved tallies a project import that matched no discovered module.
func (g *Graph) RecordUnresolved(spec string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.frozen {
		return errors.AddContext(errors.New(errors.CodeConflict, "graph is frozen"), errors.CtxModule, spec)
	}
	g.unresolved[spec]++
	observability.UnresolvedImportsTotal.Inc()
	return nil
}

// Freeze marks the graph as built. Later mutations fail with CONFLICT.
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true

	observability.GraphNodes.Set(float64(len(g.nodes)))
	observability.GraphEdges.Set(float64(g.edgeCountLocked()))
}

func (g *Graph) Frozen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frozen
}

func (g *Graph) Contains(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[path]
	return ok
}

func (g *Graph) Node(path string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[path]
	if !ok {
		return nil, false
	}
	return cloneNode(n), true
}

// Nodes returns every node path in sorted order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sortedNodesLocked()
}

func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgeCountLocked()
}

// Outgoing returns the sorted modules path imports.
func (g *Graph) Outgoing(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return util.SortedStringKeys(g.imports[path])
}

// Incoming returns the sorted modules importing path.
func (g *Graph) Incoming(path string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return util.SortedStringKeys(g.importedBy[path])
}

func (g *Graph) Edge(from, to string) (*Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.imports[from][to]
	if !ok {
		return nil, false
	}
	return cloneEdge(e), true
}

// Edges returns every edge ordered by (From, To).
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Edge, 0, g.edgeCountLocked())
	for _, from := range util.SortedStringKeys(g.imports) {
		targets := g.imports[from]
		for _, to := range util.SortedStringKeys(targets) {
			out = append(out, *cloneEdge(targets[to]))
		}
	}
	return out
}

// External returns a copy of the external import tally.
func (g *Graph) External() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyTally(g.external, nil)
}

// ExternalByOrigin splits the external tally into standard-library and
// third-party packages.
func (g *Graph) ExternalByOrigin() (stdlib, thirdParty map[string]int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	stdlib = copyTally(g.external, func(name string) bool { return g.stdlib[name] })
	thirdParty = copyTally(g.external, func(name string) bool { return !g.stdlib[name] })
	return stdlib, thirdParty
}

// Unresolved returns a copy of the unresolved project import tally.
func (g *Graph) Unresolved() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyTally(g.unresolved, nil)
}

func copyTally(in map[string]int, keep func(string) bool) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		if keep == nil || keep(k) {
			out[k] = v
		}
	}
	return out
}

// adjacency snapshots the graph as sorted node and neighbour lists.
func (g *Graph) adjacency() ([]string, map[string][]string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := g.sortedNodesLocked()
	adj := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		adj[n] = util.SortedStringKeys(g.imports[n])
	}
	return nodes, adj
}

func (g *Graph) sortedNodesLocked() []string {
	return util.SortedStringKeys(g.nodes)
}

func (g *Graph) edgeCountLocked() int {
	count := 0
	for _, targets := range g.imports {
		count += len(targets)
	}
	return count
}

func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Classes = append([]string(nil), n.Classes...)
	c.Functions = append([]string(nil), n.Functions...)
	c.Imports = append([]parser.Import(nil), n.Imports...)
	c.Definitions = append([]parser.Definition(nil), n.Definitions...)
	return &c
}

func cloneEdge(e *Edge) *Edge {
	if e == nil {
		return nil
	}
	c := *e
	c.Records = append([]ImportRecord(nil), e.Records...)
	return &c
}
