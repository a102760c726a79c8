package graph

import (
	"fmt"
	"reflect"
	"testing"
)

func TestDetectCycles_Triangle(t *testing.T) {
	g := buildGraph(t, map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}})

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if want := []string{"A", "B", "C", "A"}; !reflect.DeepEqual(cycles[0].Path, want) {
		t.Errorf("path got %v, want %v", cycles[0].Path, want)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(cycles[0].Members, want) {
		t.Errorf("members got %v, want %v", cycles[0].Members, want)
	}
}

func TestDetectCycles_Acyclic(t *testing.T) {
	g := buildGraph(t, map[string][]string{"A": {"B", "C"}, "B": {"C"}, "C": {"D"}})
	if cycles := g.DetectCycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	g := buildGraph(t, map[string][]string{"A": {"A"}, "B": {"A"}})

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if !reflect.DeepEqual(cycles[0].Members, []string{"A"}) || !reflect.DeepEqual(cycles[0].Path, []string{"A", "A"}) {
		t.Errorf("unexpected cycle %+v", cycles[0])
	}
}

func TestDetectCycles_OnePerComponent(t *testing.T) {
	// One component holding two elementary cycles, plus a separate pair.
	g := buildGraph(t, map[string][]string{
		"m": {"n", "o"},
		"n": {"m"},
		"o": {"m"},
		"x": {"y"},
		"y": {"x"},
		"z": {"m"},
	})

	cycles := g.DetectCycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d: %+v", len(cycles), cycles)
	}
	if want := []string{"m", "n", "m"}; !reflect.DeepEqual(cycles[0].Path, want) {
		t.Errorf("first cycle got %v, want %v", cycles[0].Path, want)
	}
	if want := []string{"m", "n", "o"}; !reflect.DeepEqual(cycles[0].Members, want) {
		t.Errorf("first members got %v, want %v", cycles[0].Members, want)
	}
	if cycles[1].Anchor() != "x" {
		t.Errorf("expected second cycle anchored at x, got %s", cycles[1].Anchor())
	}

	members := CycleMembers(cycles)
	if members["z"] || !members["o"] || !members["y"] {
		t.Errorf("unexpected members %v", members)
	}
}

func TestDetectCycles_PathStaysInComponent(t *testing.T) {
	// a's smallest neighbour leaves the component; the cycle must not pass through it.
	g := buildGraph(t, map[string][]string{
		"a": {"b", "c"},
		"b": {},
		"c": {"d"},
		"d": {"a"},
	})
	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if want := []string{"a", "c", "d", "a"}; !reflect.DeepEqual(cycles[0].Path, want) {
		t.Errorf("got %v, want %v", cycles[0].Path, want)
	}
}

func TestDetectCycles_LongChain(t *testing.T) {
	// Deep enough to overflow a naive recursive walk on small stacks.
	adj := make(map[string][]string)
	const n = 20000
	for i := 0; i < n; i++ {
		adj[fmt.Sprintf("m%05d", i)] = []string{fmt.Sprintf("m%05d", (i+1)%n)}
	}
	g := buildGraph(t, adj)

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected a single ring, got %d cycles", len(cycles))
	}
	if len(cycles[0].Members) != n || len(cycles[0].Path) != n+1 {
		t.Errorf("unexpected ring size members=%d path=%d", len(cycles[0].Members), len(cycles[0].Path))
	}
}

func TestDetectCycles_Deterministic(t *testing.T) {
	adj := map[string][]string{"a": {"b"}, "b": {"c", "a"}, "c": {"a"}, "d": {"e"}, "e": {"d"}}
	first := buildGraph(t, adj).DetectCycles()
	for i := 0; i < 10; i++ {
		if got := buildGraph(t, adj).DetectCycles(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestFindImportChain(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"app":  {"svc", "util"},
		"svc":  {"db"},
		"util": {"db"},
		"db":   {},
	})

	path, ok := g.FindImportChain("app", "db")
	if !ok {
		t.Fatal("expected chain")
	}
	if want := []string{"app", "svc", "db"}; !reflect.DeepEqual(path, want) {
		t.Errorf("got %v, want %v", path, want)
	}

	if path, ok := g.FindImportChain("db", "db"); !ok || len(path) != 1 {
		t.Errorf("self chain got %v %v", path, ok)
	}
	if _, ok := g.FindImportChain("db", "app"); ok {
		t.Error("expected no reverse chain")
	}
	if _, ok := g.FindImportChain("app", "missing"); ok {
		t.Error("expected no chain to unknown module")
	}
}

func BenchmarkDetectCycles(b *testing.B) {
	g := NewGraph()
	for i := 0; i < 500; i++ {
		_ = g.AddNode(fmt.Sprintf("file%d", i), Node{})
	}
	for i := 0; i < 500; i++ {
		_ = g.AddEdge(fmt.Sprintf("file%d", i), fmt.Sprintf("file%d", (i+1)%500), ImportRecord{Line: 1})
	}
	g.Freeze()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.DetectCycles()
	}
}
