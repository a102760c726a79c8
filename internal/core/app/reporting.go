package app

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/dynimport"
	"depscan/internal/engine/graph"
	"depscan/internal/engine/resolver"
	"depscan/internal/engine/split"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type FindingKind string

const (
	KindDynamicImport FindingKind = FindingKind(dynimport.KindDynamicImport)
	KindCodeEval      FindingKind = FindingKind(dynimport.KindCodeEval)
	KindParseError    FindingKind = "parse_error"
)

// Finding is a located diagnostic for one file.
type Finding struct {
	File     string // Project-relative file path
	Module   string // Canonical node path
	Line     int
	Kind     FindingKind
	Snippet  string
	Message  string
	Target   string // Literal target of a dynamic import, if any
	Resolved string // Node path the target resolves to, if any
}

// NodeFlags summarizes the findings touching one node, for renderers.
type NodeFlags struct {
	CycleInvolved  bool
	Oversized      bool
	Dead           bool
	DynamicImports bool
}

// Report is the result of one analysis run. All slices are sorted.
type Report struct {
	Root            string
	Files           int
	Graph           *graph.Graph
	Cycles          []graph.Cycle
	Reachability    graph.Reachability
	Oversized       []split.Oversized
	DynamicFindings []Finding
	ParseErrors     []Finding
	AnalyzerErrors  []error
	Duration        time.Duration

	flagsOnce sync.Once
	flags     map[string]NodeFlags
}

// Flags reports what is notable about the node at path.
func (r *Report) Flags(path string) NodeFlags {
	r.flagsOnce.Do(r.indexFlags)
	return r.flags[path]
}

func (r *Report) indexFlags() {
	r.flags = make(map[string]NodeFlags)
	update := func(path string, set func(*NodeFlags)) {
		f := r.flags[path]
		set(&f)
		r.flags[path] = f
	}
	for member := range graph.CycleMembers(r.Cycles) {
		update(member, func(f *NodeFlags) { f.CycleInvolved = true })
	}
	for _, o := range r.Oversized {
		update(o.Path, func(f *NodeFlags) { f.Oversized = true })
	}
	for _, dead := range r.Reachability.Dead {
		update(dead, func(f *NodeFlags) { f.Dead = true })
	}
	for _, finding := range r.DynamicFindings {
		update(finding.Module, func(f *NodeFlags) { f.DynamicImports = true })
	}
}

// Findings returns dynamic-import and parse-error findings ordered by file and line.
func (r *Report) Findings() []Finding {
	out := make([]Finding, 0, len(r.DynamicFindings)+len(r.ParseErrors))
	out = append(out, r.DynamicFindings...)
	out = append(out, r.ParseErrors...)
	sortFindings(out)
	return out
}

// Lookup maps a user-supplied module reference to a node path. It accepts a node
// path, a project-relative file path, or a dotted module name.
func (r *Report) Lookup(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || r.Graph == nil {
		return "", false
	}
	if r.Graph.Contains(ref) {
		return ref, true
	}
	if canonical := resolver.CanonicalPath(filepath.ToSlash(ref)); r.Graph.Contains(canonical) {
		return canonical, true
	}
	if dotted := strings.ReplaceAll(ref, ".", "/"); r.Graph.Contains(dotted) {
		return dotted, true
	}
	if pkg := strings.ReplaceAll(ref, ".", "/") + "/__init__"; r.Graph.Contains(pkg) {
		return pkg, true
	}
	return "", false
}

func (r *Report) TraceImportChain(from, to string) (string, error) {
	src, ok := r.Lookup(from)
	if !ok {
		return "", errors.AddContext(errors.New(errors.CodeNotFound, "source module not found"), errors.CtxModule, from)
	}
	dst, ok := r.Lookup(to)
	if !ok {
		return "", errors.AddContext(errors.New(errors.CodeNotFound, "target module not found"), errors.CtxModule, to)
	}

	chain, ok := r.Graph.FindImportChain(src, dst)
	if !ok {
		return "", errors.Newf(errors.CodeNotFound, "no import chain found from %s to %s", src, dst)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Import chain: %s -> %s\n\n", src, dst))
	for i, module := range chain {
		b.WriteString(module)
		b.WriteString("\n")
		if i < len(chain)-1 {
			b.WriteString("  -> ")
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Report) AnalyzeImpact(ref string) (graph.ImpactReport, error) {
	path, ok := r.Lookup(ref)
	if !ok {
		return graph.ImpactReport{}, errors.AddContext(errors.New(errors.CodeNotFound, "module not found"), errors.CtxModule, ref)
	}
	return r.Graph.AnalyzeImpact(path)
}

func sortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].File != fs[j].File {
			return fs[i].File < fs[j].File
		}
		if fs[i].Line != fs[j].Line {
			return fs[i].Line < fs[j].Line
		}
		return fs[i].Kind < fs[j].Kind
	})
}
