package graph

import (
	"reflect"
	"strings"
	"testing"
)

func TestFindDeadModules_IsolatedNode(t *testing.T) {
	g := buildGraph(t, map[string][]string{"E": {"F"}, "F": {"G"}, "G": {}, "H": {}})

	res := g.FindDeadModules([]string{"E"})
	if !reflect.DeepEqual(res.Dead, []string{"H"}) {
		t.Errorf("dead got %v, want [H]", res.Dead)
	}
	if !reflect.DeepEqual(res.Live, []string{"E", "F", "G"}) {
		t.Errorf("live got %v", res.Live)
	}
	if !reflect.DeepEqual(res.EntryPoints, []string{"E"}) {
		t.Errorf("entry points got %v", res.EntryPoints)
	}
}

func TestFindDeadModules_DeadChains(t *testing.T) {
	// orphan imports helper; neither is reachable from main.
	g := buildGraph(t, map[string][]string{
		"main":   {"core"},
		"core":   {},
		"orphan": {"helper"},
		"helper": {"core"},
	})
	res := g.FindDeadModules([]string{"main"})
	if !reflect.DeepEqual(res.Dead, []string{"helper", "orphan"}) {
		t.Errorf("dead got %v", res.Dead)
	}
}

func TestFindDeadModules_EntryPointAlwaysLive(t *testing.T) {
	g := buildGraph(t, map[string][]string{"cli": {}, "lib": {"cli"}})
	res := g.FindDeadModules([]string{"cli"})
	if !reflect.DeepEqual(res.Live, []string{"cli"}) || !reflect.DeepEqual(res.Dead, []string{"lib"}) {
		t.Errorf("unexpected partition live=%v dead=%v", res.Live, res.Dead)
	}
}

func TestFindDeadModules_NoEntryPoints(t *testing.T) {
	g := buildGraph(t, map[string][]string{"a": {"b"}, "b": {}})
	res := g.FindDeadModules(nil)
	if len(res.Live) != 0 {
		t.Errorf("expected empty live set, got %v", res.Live)
	}
	if !reflect.DeepEqual(res.Dead, []string{"a", "b"}) {
		t.Errorf("expected every node dead, got %v", res.Dead)
	}
}

func TestFindDeadModules_UnknownEntryPoints(t *testing.T) {
	g := buildGraph(t, map[string][]string{"a": {"b"}, "b": {}, "c": {}})
	res := g.FindDeadModules([]string{"missing", "a", "a"})
	if !reflect.DeepEqual(res.Unknown, []string{"missing"}) {
		t.Errorf("unknown got %v", res.Unknown)
	}
	if !reflect.DeepEqual(res.EntryPoints, []string{"a"}) {
		t.Errorf("entry points got %v", res.EntryPoints)
	}
	if !reflect.DeepEqual(res.Dead, []string{"c"}) {
		t.Errorf("dead got %v", res.Dead)
	}
}

func TestInferEntryPoints(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("pkg/main", Node{FilePath: "pkg/main.py"})
	_ = g.AddNode("tools/sync", Node{FilePath: "tools/sync.py", HasMainGuard: true})
	_ = g.AddNode("pkg/lib", Node{FilePath: "pkg/lib.py"})
	g.Freeze()

	got := g.InferEntryPoints(func(n *Node) bool {
		return n.HasMainGuard || strings.HasSuffix(n.FilePath, "/main.py")
	})
	if !reflect.DeepEqual(got, []string{"pkg/main", "tools/sync"}) {
		t.Errorf("got %v", got)
	}
}
