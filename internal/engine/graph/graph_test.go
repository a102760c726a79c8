// # internal/engine/graph/graph_test.go
package graph

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/parser"
	"reflect"
	"testing"
)

// buildGraph creates one node per key and an edge for every listed target.
func buildGraph(t *testing.T, adj map[string][]string) *Graph {
	t.Helper()
	g := NewGraph()
	for from, targets := range adj {
		if err := g.AddNode(from, Node{}); err != nil {
			t.Fatal(err)
		}
		for _, to := range targets {
			if err := g.AddNode(to, Node{}); err != nil {
				t.Fatal(err)
			}
		}
	}
	for from, targets := range adj {
		for _, to := range targets {
			if err := g.AddEdge(from, to, ImportRecord{Line: 1, Raw: "import " + to}); err != nil {
				t.Fatal(err)
			}
		}
	}
	g.Freeze()
	return g
}

func TestGraph_AddNodeIdempotent(t *testing.T) {
	g := NewGraph()
	if err := g.AddNode("pkg/mod", Node{LineCount: 10}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode("pkg/mod", Node{LineCount: 99}); err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}
	n, ok := g.Node("pkg/mod")
	if !ok || n.LineCount != 10 || n.Path != "pkg/mod" {
		t.Errorf("first metadata should win, got %+v", n)
	}
	if err := g.AddNode("", Node{}); !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("expected validation error for empty path, got %v", err)
	}
}

func TestGraph_EdgeMerging(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("a", Node{})
	_ = g.AddNode("b", Node{})

	if err := g.AddEdge("a", "b", ImportRecord{Line: 1, Raw: "import b"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("a", "b", ImportRecord{Line: 7, Raw: "from b import x", Conditional: true}); err != nil {
		t.Fatal(err)
	}

	if g.EdgeCount() != 1 {
		t.Fatalf("expected merged edge, got %d edges", g.EdgeCount())
	}
	e, ok := g.Edge("a", "b")
	if !ok {
		t.Fatal("expected edge a -> b")
	}
	want := []ImportRecord{{Line: 1, Raw: "import b"}, {Line: 7, Raw: "from b import x", Conditional: true}}
	if !reflect.DeepEqual(e.Records, want) {
		t.Errorf("records got %+v, want %+v", e.Records, want)
	}
	if got := g.Incoming("b"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Incoming(b) = %v", got)
	}
}

func TestGraph_NoDanglingEdges(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("a", Node{})

	err := g.AddEdge("a", "requests", ImportRecord{Line: 1})
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown target, got %v", err)
	}
	err = g.AddEdge("ghost", "a", ImportRecord{Line: 1})
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for unknown source, got %v", err)
	}

	g = buildGraph(t, map[string][]string{"a": {"b", "c"}, "b": {"c"}, "c": {"a"}})
	for _, e := range g.Edges() {
		if !g.Contains(e.From) || !g.Contains(e.To) {
			t.Errorf("dangling edge %s -> %s", e.From, e.To)
		}
	}
}

func TestGraph_Freeze(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("a", Node{})
	g.Freeze()

	if !g.Frozen() {
		t.Fatal("expected frozen graph")
	}
	if err := g.AddNode("b", Node{}); !errors.IsCode(err, errors.CodeConflict) {
		t.Errorf("AddNode after freeze: expected CONFLICT, got %v", err)
	}
	if err := g.AddEdge("a", "a", ImportRecord{}); !errors.IsCode(err, errors.CodeConflict) {
		t.Errorf("AddEdge after freeze: expected CONFLICT, got %v", err)
	}
	if err := g.RecordExternal("os", true); !errors.IsCode(err, errors.CodeConflict) {
		t.Errorf("RecordExternal after freeze: expected CONFLICT, got %v", err)
	}
}

func TestGraph_SortedAccessors(t *testing.T) {
	g := buildGraph(t, map[string][]string{"c": {"b", "a"}, "b": {"a"}})

	if got := g.Nodes(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if got := g.Outgoing("c"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Outgoing(c) = %v", got)
	}
	if got := g.Incoming("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Incoming(a) = %v", got)
	}
	if got := g.Outgoing("missing"); len(got) != 0 {
		t.Errorf("Outgoing(missing) = %v", got)
	}

	edges := g.Edges()
	var pairs []string
	for _, e := range edges {
		pairs = append(pairs, e.From+"->"+e.To)
	}
	if !reflect.DeepEqual(pairs, []string{"b->a", "c->a", "c->b"}) {
		t.Errorf("Edges() order = %v", pairs)
	}
}

func TestGraph_External(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("a", Node{})
	_ = g.RecordExternal("os", true)
	_ = g.RecordExternal("os", true)
	_ = g.RecordExternal("requests", false)
	_ = g.RecordUnresolved("pkg.generated")
	_ = g.RecordUnresolved("..")

	ext := g.External()
	if ext["os"] != 2 || ext["requests"] != 1 {
		t.Errorf("unexpected tally %v", ext)
	}
	ext["os"] = 100
	if g.External()["os"] != 2 {
		t.Error("External() must return a copy")
	}
	if g.Contains("os") || g.NodeCount() != 1 {
		t.Error("external imports must not create nodes")
	}

	stdlib, thirdParty := g.ExternalByOrigin()
	if !reflect.DeepEqual(stdlib, map[string]int{"os": 2}) || !reflect.DeepEqual(thirdParty, map[string]int{"requests": 1}) {
		t.Errorf("ExternalByOrigin() = %v, %v", stdlib, thirdParty)
	}
	if got := g.Unresolved(); !reflect.DeepEqual(got, map[string]int{"pkg.generated": 1, "..": 1}) {
		t.Errorf("Unresolved() = %v", got)
	}
	if _, ok := g.External()["pkg.generated"]; ok {
		t.Error("unresolved imports must not be tallied as external")
	}

	g.Freeze()
	if err := g.RecordUnresolved("late"); !errors.IsCode(err, errors.CodeConflict) {
		t.Errorf("RecordUnresolved after freeze: expected CONFLICT, got %v", err)
	}
}

func TestNodeFromFile(t *testing.T) {
	file := &parser.File{
		Path:      "pkg/mod.py",
		LineCount: 42,
		Definitions: []parser.Definition{
			{Name: "Model", Kind: parser.KindClass},
			{Name: "helper", Kind: parser.KindFunction},
		},
		HasMainGuard: true,
	}
	n := NodeFromFile("pkg/mod", file)
	if n.Path != "pkg/mod" || n.FilePath != "pkg/mod.py" || n.LineCount != 42 || !n.HasMainGuard {
		t.Errorf("unexpected node %+v", n)
	}
	if !reflect.DeepEqual(n.Classes, []string{"Model"}) || !reflect.DeepEqual(n.Functions, []string{"helper"}) {
		t.Errorf("unexpected symbols classes=%v functions=%v", n.Classes, n.Functions)
	}
}
