package graph

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/parser"
	"reflect"
	"testing"
)

func TestComputeModuleMetrics(t *testing.T) {
	// app -> svc -> db, with svc <-> cache forming a cycle.
	g := buildGraph(t, map[string][]string{
		"app":   {"svc"},
		"svc":   {"db", "cache"},
		"cache": {"svc"},
		"db":    {},
	})

	m := g.ComputeModuleMetrics()
	if m["svc"].FanIn != 2 || m["svc"].FanOut != 2 {
		t.Errorf("svc fan-in/out got %d/%d", m["svc"].FanIn, m["svc"].FanOut)
	}
	if m["db"].Depth != 0 {
		t.Errorf("db depth got %d", m["db"].Depth)
	}
	// The svc/cache cycle counts as one step.
	if m["svc"].Depth != 1 || m["cache"].Depth != 1 {
		t.Errorf("cycle depth got svc=%d cache=%d", m["svc"].Depth, m["cache"].Depth)
	}
	if m["app"].Depth != 2 {
		t.Errorf("app depth got %d", m["app"].Depth)
	}
}

func TestTopImported(t *testing.T) {
	metrics := map[string]ModuleMetrics{
		"a": {FanIn: 3},
		"b": {FanIn: 5},
		"c": {FanIn: 3},
		"d": {FanIn: 0},
	}
	top := TopImported(metrics, 10)
	var got []string
	for _, r := range top {
		got = append(got, r.Path)
	}
	if !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("got %v", got)
	}
	if len(TopImported(metrics, 1)) != 1 || TopImported(metrics, 0) != nil {
		t.Error("unexpected limit handling")
	}
}

func TestCalculateImportanceScore(t *testing.T) {
	tests := []struct {
		name   string
		fanIn  int
		fanOut int
		lines  int
		path   string
		want   float64
	}{
		{"zero everything gives zero", 0, 0, 0, "leaf", 0},
		{"fan-in weighted double fan-out", 4, 2, 0, "core", 10},
		{"size contributes per hundred lines", 0, 0, 250, "core", 2.5},
		{"api segment bonus", 1, 0, 0, "pkg/api/users", 12},
		{"suffix bonus", 0, 0, 0, "pkg/user_views", 10},
		{"no substring match", 0, 0, 0, "pkg/capital", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateImportanceScore(tt.fanIn, tt.fanOut, tt.lines, tt.path); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeImpact(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("db", Node{Definitions: []parser.Definition{
		{Name: "connect", Exported: true},
		{Name: "_pool", Exported: false},
	}})
	_ = g.AddNode("repo", Node{})
	_ = g.AddNode("svc", Node{})
	_ = g.AddNode("app", Node{})
	_ = g.AddEdge("repo", "db", ImportRecord{Line: 1})
	_ = g.AddEdge("svc", "repo", ImportRecord{Line: 1})
	_ = g.AddEdge("app", "svc", ImportRecord{Line: 1})
	_ = g.AddEdge("app", "db", ImportRecord{Line: 2})
	g.Freeze()

	report, err := g.AnalyzeImpact("db")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(report.DirectImporters, []string{"app", "repo"}) {
		t.Errorf("direct got %v", report.DirectImporters)
	}
	if !reflect.DeepEqual(report.TransitiveImporters, []string{"svc"}) {
		t.Errorf("transitive got %v", report.TransitiveImporters)
	}
	if !reflect.DeepEqual(report.ExportedSymbols, []string{"connect"}) {
		t.Errorf("symbols got %v", report.ExportedSymbols)
	}

	if _, err := g.AnalyzeImpact("nope"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
