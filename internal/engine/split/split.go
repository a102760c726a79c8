// # internal/engine/split/split.go
package split

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/graph"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

type Kind string

const (
	KindClassGrouping    Kind = "class_grouping"
	KindFunctionGrouping Kind = "function_grouping"
	KindImportPartition  Kind = "import_partition"
	KindUtilitySplit     Kind = "utility_split"
)

// PrefixRule selects how function names are cut into a grouping prefix.
type PrefixRule string

const (
	PrefixUnderscore PrefixRule = "underscore" // "load_user" -> "load"
	PrefixCamel      PrefixRule = "camel"      // "loadUser" -> "load"
)

const DefaultThreshold = 500

var DefaultUtilityPatterns = []string{"util*", "*utils", "*helpers", "helper*", "common", "misc", "tools"}

type Options struct {
	Threshold       int // Modules with strictly more lines are oversized
	MinClasses      int
	MinFunctions    int
	MinPrefixLen    int
	PrefixRule      PrefixRule
	UtilityPatterns []string // Globs over the module base name
}

func DefaultOptions() Options {
	return Options{
		Threshold:       DefaultThreshold,
		MinClasses:      3,
		MinFunctions:    10,
		MinPrefixLen:    3,
		PrefixRule:      PrefixUnderscore,
		UtilityPatterns: append([]string(nil), DefaultUtilityPatterns...),
	}
}

type Group struct {
	Name    string
	Members []string
}

type Suggestion struct {
	Path     string
	Strategy Kind
	Reason   string
	Groups   []Group
}

// Oversized is one module over the threshold with every suggestion that fired.
type Oversized struct {
	Path        string
	LineCount   int
	Suggestions []Suggestion
}

// Input is what a heuristic sees for one oversized module.
type Input struct {
	Node      *graph.Node
	Options   Options
	IsUtility bool
}

// Heuristic is an independent predicate-and-generator pair. Apply reports whether it fired.
type Heuristic struct {
	Kind  Kind
	Apply func(in Input) (Suggestion, bool)
}

type Engine struct {
	opts       Options
	heuristics []Heuristic
	utility    []glob.Glob
}

// NewEngine validates opts. With no heuristics given, DefaultHeuristics is used.
func NewEngine(opts Options, heuristics ...Heuristic) (*Engine, error) {
	if opts.Threshold < 0 {
		return nil, errors.Newf(errors.CodeValidationError, "oversized threshold must be >= 0, got %d", opts.Threshold)
	}
	switch opts.PrefixRule {
	case PrefixUnderscore, PrefixCamel:
	case "":
		opts.PrefixRule = PrefixUnderscore
	default:
		return nil, errors.Newf(errors.CodeValidationError, "unknown prefix rule %q", opts.PrefixRule)
	}

	e := &Engine{opts: opts, heuristics: heuristics}
	if len(e.heuristics) == 0 {
		e.heuristics = DefaultHeuristics()
	}
	for _, pattern := range opts.UtilityPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid utility pattern %q", pattern))
		}
		e.utility = append(e.utility, g)
	}
	return e, nil
}

// IsOversized applies the strict greater-than threshold.
func (e *Engine) IsOversized(lineCount int) bool {
	return lineCount > e.opts.Threshold
}

// IsUtility reports whether a module's base name matches a utility pattern.
// A package initializer is named after its directory.
func (e *Engine) IsUtility(modulePath string) bool {
	name := path.Base(modulePath)
	if name == "__init__" {
		name = path.Base(path.Dir(modulePath))
	}
	name = strings.ToLower(name)
	for _, g := range e.utility {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Analyze ranks oversized modules by size (ties by path) and evaluates every
// heuristic against each. A heuristic that panics is skipped for that module and
// reported in the returned errors; the remaining heuristics still run.
func (e *Engine) Analyze(g *graph.Graph) ([]Oversized, []error) {
	var candidates []*graph.Node
	for _, p := range g.Nodes() {
		n, ok := g.Node(p)
		if ok && e.IsOversized(n.LineCount) {
			candidates = append(candidates, n)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].LineCount != candidates[j].LineCount {
			return candidates[i].LineCount > candidates[j].LineCount
		}
		return candidates[i].Path < candidates[j].Path
	})

	var failures []error
	out := make([]Oversized, 0, len(candidates))
	for _, n := range candidates {
		in := Input{Node: n, Options: e.opts, IsUtility: e.IsUtility(n.Path)}
		entry := Oversized{Path: n.Path, LineCount: n.LineCount}
		for _, h := range e.heuristics {
			s, fired, err := apply(h, in)
			if err != nil {
				failures = append(failures, err)
				continue
			}
			if fired {
				s.Path = n.Path
				s.Strategy = h.Kind
				entry.Suggestions = append(entry.Suggestions, s)
			}
		}
		out = append(out, entry)
	}
	return out, failures
}

func apply(h Heuristic, in Input) (s Suggestion, fired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.AddContext(
				errors.AddContext(errors.Newf(errors.CodeInternal, "split heuristic panicked: %v", r), errors.CtxAnalyzer, string(h.Kind)),
				errors.CtxModule, in.Node.Path)
			fired = false
		}
	}()
	s, fired = h.Apply(in)
	return s, fired, nil
}
